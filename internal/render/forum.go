package render

import (
	"html/template"
	"strings"

	"github.com/JakeFAU/seo-snapshot-generator/internal/snapshot"
)

const emptyForum = "No forum posts yet. Be the first to start a discussion!"

type forumRootView struct {
	Announcements []cardView
	Posts         []cardView
	Empty         string
}

func (r *Renderer) forumCard(p snapshot.ForumPost) cardView {
	card := cardView{
		Title:    strings.TrimSpace(p.Title),
		URL:      r.url(snapshot.KindForumPost, p.ID),
		Subtitle: "by " + p.Author.Name(),
		Meta:     joinPresent(" · ", humanDate(p.CreatedAt), r.count(p.CommentCount, "comment", "comments")),
	}
	if card.Title == "" {
		card.Title = "Untitled discussion"
	}
	if p.Announcement {
		card.Badge = "Announcement"
	}
	return card
}

// ForumRoot renders the forum index. Announcements are listed first.
func (r *Renderer) ForumRoot(posts, announcements []snapshot.ForumPost) (string, error) {
	view := forumRootView{
		Announcements: make([]cardView, 0, len(announcements)),
		Posts:         make([]cardView, 0, len(posts)),
	}
	for _, a := range announcements {
		if strings.TrimSpace(a.ID) == "" {
			continue
		}
		view.Announcements = append(view.Announcements, r.forumCard(a))
	}
	for _, p := range posts {
		if strings.TrimSpace(p.ID) == "" {
			continue
		}
		view.Posts = append(view.Posts, r.forumCard(p))
	}
	if len(view.Announcements)+len(view.Posts) == 0 {
		view.Empty = emptyForum
	}

	title := "Community Forum"
	description := "Discuss banknotes, share discoveries and ask questions in the " + r.site.Name + " community forum."
	canonical := r.url(snapshot.KindForum, "")
	all := append(append([]cardView{}, view.Announcements...), view.Posts...)
	return r.render(page{
		kind:        snapshot.KindForum,
		title:       title,
		description: description,
		bodyName:    "forum-root",
		bodyData:    view,
		ld: []node{
			r.collectionPage(title, description, canonical, itemList("Discussions", listEntries(all))),
			r.breadcrumbs(listEntry{Name: "Forum", URL: canonical}),
		},
	})
}

type forumPostView struct {
	Title        string
	Author       authorView
	Published    string
	PublishedISO string
	Comments     string
	Body         template.HTML
	Images       []imageView
	Announcement bool
	ForumURL     string
}

// ForumPost renders one discussion thread or announcement.
func (r *Renderer) ForumPost(post snapshot.ForumPost) (string, error) {
	if strings.TrimSpace(post.ID) == "" {
		return "", errMissingID
	}
	title := strings.TrimSpace(post.Title)
	if title == "" {
		title = "Untitled discussion"
	}
	author := newAuthorView(post.Author)
	images := make([]imageView, 0, len(post.ImageURLs))
	imageURLs := make([]string, 0, len(post.ImageURLs))
	for i, u := range post.ImageURLs {
		if u = strings.TrimSpace(u); u == "" {
			continue
		}
		images = append(images, imageView{URL: u, Alt: title + " image " + itoa(i+1)})
		imageURLs = append(imageURLs, u)
	}
	view := forumPostView{
		Title:        title,
		Author:       author,
		Published:    humanDate(post.CreatedAt),
		PublishedISO: isoTime(post.CreatedAt),
		Comments:     r.count(post.CommentCount, "comment", "comments"),
		Body:         r.bodyHTML(post.Content),
		Images:       images,
		Announcement: post.Announcement,
		ForumURL:     r.url(snapshot.KindForum, ""),
	}

	canonical := r.url(snapshot.KindForumPost, post.ID)
	text := plainText(post.Content)
	posting := newNode("DiscussionForumPosting").
		set("headline", title).
		set("text", describe(text, "")).
		set("url", canonical).
		set("author", person(author)).
		set("datePublished", isoTime(post.CreatedAt)).
		set("dateModified", isoTimePtr(post.UpdatedAt)).
		set("image", imageURLs).
		set("interactionStatistic", newNode("InteractionCounter").
			set("interactionType", "https://schema.org/CommentAction").
			set("userInteractionCount", post.CommentCount))

	var image string
	if len(imageURLs) > 0 {
		image = imageURLs[0]
	}
	return r.render(page{
		kind:        snapshot.KindForumPost,
		key:         post.ID,
		title:       title,
		description: joinPresent(" - ", text, "Forum discussion by "+author.Name),
		image:       image,
		ogType:      "article",
		bodyName:    "forum-post",
		bodyData:    view,
		ld: []node{
			posting,
			r.breadcrumbs(
				listEntry{Name: "Forum", URL: view.ForumURL},
				listEntry{Name: title, URL: canonical},
			),
		},
	})
}
