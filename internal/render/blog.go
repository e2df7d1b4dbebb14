package render

import (
	"html/template"
	"strings"

	"github.com/JakeFAU/seo-snapshot-generator/internal/snapshot"
)

const emptyBlog = "No blog posts have been published yet. Check back soon!"

type blogRootView struct {
	Posts []cardView
	Empty string
}

func blogExcerpt(p snapshot.BlogPost) string {
	if excerpt, ok := snapshot.Text(p.Excerpt); ok {
		return plainText(excerpt)
	}
	return plainText(p.Content)
}

func (r *Renderer) blogCard(p snapshot.BlogPost) cardView {
	image, _ := snapshot.Text(p.FeaturedImage)
	return cardView{
		Title:    blogTitle(p),
		URL:      r.url(snapshot.KindBlogPost, p.ID),
		Image:    image,
		Subtitle: truncate(blogExcerpt(p), maxDescriptionRunes),
		Meta:     joinPresent(" · ", p.Author.Name(), humanDate(p.CreatedAt)),
	}
}

func blogTitle(p snapshot.BlogPost) string {
	if t := strings.TrimSpace(p.Title); t != "" {
		return t
	}
	return "Untitled post"
}

// BlogRoot renders the blog index.
func (r *Renderer) BlogRoot(posts []snapshot.BlogPost) (string, error) {
	view := blogRootView{Posts: make([]cardView, 0, len(posts))}
	for _, p := range posts {
		if strings.TrimSpace(p.ID) == "" {
			continue
		}
		view.Posts = append(view.Posts, r.blogCard(p))
	}
	if len(view.Posts) == 0 {
		view.Empty = emptyBlog
	}
	title := "Blog"
	description := "News, research and collecting stories from the " + r.site.Name + " team and community."
	canonical := r.url(snapshot.KindBlog, "")
	blog := newNode("Blog").
		set("name", r.site.Name+" Blog").
		set("url", canonical)
	return r.render(page{
		kind:        snapshot.KindBlog,
		title:       title,
		description: description,
		bodyName:    "blog-root",
		bodyData:    view,
		ld: []node{
			r.collectionPage(title, description, canonical, itemList("Posts", listEntries(view.Posts))),
			blog,
			r.breadcrumbs(listEntry{Name: "Blog", URL: canonical}),
		},
	})
}

type blogPostView struct {
	Title        string
	Author       authorView
	Published    string
	PublishedISO string
	Updated      string
	Comments     string
	Image        string
	Body         template.HTML
	BlogURL      string
}

// BlogPost renders one article.
func (r *Renderer) BlogPost(post snapshot.BlogPost) (string, error) {
	if strings.TrimSpace(post.ID) == "" {
		return "", errMissingID
	}
	title := blogTitle(post)
	author := newAuthorView(post.Author)
	image, _ := snapshot.Text(post.FeaturedImage)
	view := blogPostView{
		Title:        title,
		Author:       author,
		Published:    humanDate(post.CreatedAt),
		PublishedISO: isoTime(post.CreatedAt),
		Comments:     r.count(post.CommentCount, "comment", "comments"),
		Image:        image,
		Body:         r.bodyHTML(post.Content),
		BlogURL:      r.url(snapshot.KindBlog, ""),
	}
	if post.UpdatedAt != nil && !post.UpdatedAt.Equal(post.CreatedAt) {
		view.Updated = humanDate(*post.UpdatedAt)
	}

	canonical := r.url(snapshot.KindBlogPost, post.ID)
	excerpt := blogExcerpt(post)
	posting := newNode("BlogPosting").
		set("headline", title).
		set("description", describe(excerpt, "")).
		set("url", canonical).
		set("mainEntityOfPage", canonical).
		set("image", image).
		set("author", person(author)).
		set("publisher", r.organization()).
		set("datePublished", isoTime(post.CreatedAt)).
		set("dateModified", isoTimePtr(post.UpdatedAt)).
		set("commentCount", post.CommentCount)

	return r.render(page{
		kind:        snapshot.KindBlogPost,
		key:         post.ID,
		title:       title,
		description: excerpt,
		image:       image,
		ogType:      "article",
		bodyName:    "blog-post",
		bodyData:    view,
		ld: []node{
			posting,
			r.breadcrumbs(
				listEntry{Name: "Blog", URL: view.BlogURL},
				listEntry{Name: title, URL: canonical},
			),
		},
	})
}
