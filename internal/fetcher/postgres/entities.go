package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JakeFAU/seo-snapshot-generator/internal/snapshot"
)

const catalogColumns = `
	b.id::text,
	COALESCE(b.country, ''),
	COALESCE(b.face_value, ''),
	b.gregorian_year,
	b.islamic_year,
	b.pick_number,
	b.extended_pick_number,
	b.sultan_name,
	b.printer,
	b.rarity,
	b.security_element,
	b.dimensions,
	b.colors,
	b.seal_names,
	b.category,
	b.type,
	b.banknote_description,
	b.historical_description,
	COALESCE(b.signatures, '{}'::text[]),
	b.front_picture,
	b.back_picture,
	b.front_picture_watermarked,
	b.back_picture_watermarked,
	b.front_picture_thumbnail,
	b.back_picture_thumbnail,
	b.is_approved,
	b.is_pending,
	b.updated_at`

const catalogQuery = `SELECT` + catalogColumns + `
FROM detailed_banknotes b
ORDER BY b.id
LIMIT $1 OFFSET $2`

const countryCatalogQuery = `SELECT` + catalogColumns + `
FROM detailed_banknotes b
WHERE b.country = $1 AND b.is_approved AND NOT b.is_pending
ORDER BY b.extended_pick_number NULLS LAST, b.pick_number NULLS LAST, b.id
LIMIT $2 OFFSET $3`

const countriesQuery = `SELECT
	COALESCE(c.name, ''),
	c.image_url,
	c.description
FROM countries c
ORDER BY c.display_order NULLS LAST, c.name
LIMIT $1 OFFSET $2`

const authorColumns = `
	pr.id::text,
	pr.username,
	pr.avatar_url,
	pr.rank`

const forumPostsQuery = `SELECT
	p.id::text,
	p.title,
	p.content,
	p.created_at,
	p.updated_at,
	COALESCE(p.image_urls, '{}'::text[]),
	(SELECT count(*) FROM forum_comments fc WHERE fc.post_id = p.id),` + authorColumns + `
FROM forum_posts p
LEFT JOIN profiles pr ON pr.id = p.author_id
ORDER BY p.created_at DESC, p.id
LIMIT $1 OFFSET $2`

const announcementsQuery = `SELECT
	a.id::text,
	a.title,
	a.content,
	a.created_at,
	a.updated_at,
	COALESCE(a.image_urls, '{}'::text[]),
	(SELECT count(*) FROM forum_announcement_comments ac WHERE ac.announcement_id = a.id),` + authorColumns + `
FROM forum_announcements a
LEFT JOIN profiles pr ON pr.id = a.author_id
ORDER BY a.created_at DESC, a.id
LIMIT $1 OFFSET $2`

const blogPostsQuery = `SELECT
	p.id::text,
	p.title,
	p.content,
	p.excerpt,
	p.created_at,
	p.updated_at,
	p.main_image_url,
	(SELECT count(*) FROM blog_comments bc WHERE bc.post_id = p.id),` + authorColumns + `
FROM blog_posts p
LEFT JOIN profiles pr ON pr.id = p.author_id
ORDER BY p.created_at DESC, p.id
LIMIT $1 OFFSET $2`

const listingsQuery = `SELECT
	m.id::text,
	COALESCE(m.status::text, ''),
	m.created_at,
	ci.id::text,
	COALESCE(ci.banknote_id::text, ''),
	ci.condition,
	ci.grade,
	ci.sale_price::float8,
	ci.public_note,
	ci.obverse_image,
	ci.reverse_image,` + authorColumns + `
FROM marketplace_items m
JOIN collection_items ci ON ci.id = m.collection_item_id
LEFT JOIN profiles pr ON pr.id = m.seller_id
ORDER BY m.created_at DESC, m.id
LIMIT $1 OFFSET $2`

// CatalogEntries returns every catalogue entry. Publish gating is left to the
// caller so lookups can resolve unapproved notes referenced by listings.
func (s *Store) CatalogEntries(ctx context.Context) ([]snapshot.CatalogEntry, error) {
	return fetchAll(ctx, s, "detailed_banknotes", catalogQuery, scanCatalogEntry)
}

// CountryEntries returns the publishable entries of one country.
func (s *Store) CountryEntries(ctx context.Context, country string) ([]snapshot.CatalogEntry, error) {
	return fetchAll(ctx, s, "detailed_banknotes", countryCatalogQuery, scanCatalogEntry, country)
}

// Countries returns the catalogue countries. EntryCount is left at zero.
func (s *Store) Countries(ctx context.Context) ([]snapshot.CountryGroup, error) {
	return fetchAll(ctx, s, "countries", countriesQuery, scanCountry)
}

// ForumPosts returns forum threads joined with author and comment count.
func (s *Store) ForumPosts(ctx context.Context) ([]snapshot.ForumPost, error) {
	return fetchAll(ctx, s, "forum_posts", forumPostsQuery, scanForumPost(false))
}

// Announcements returns forum announcements joined with author and comment count.
func (s *Store) Announcements(ctx context.Context) ([]snapshot.ForumPost, error) {
	return fetchAll(ctx, s, "forum_announcements", announcementsQuery, scanForumPost(true))
}

// BlogPosts returns blog articles joined with author and comment count.
func (s *Store) BlogPosts(ctx context.Context) ([]snapshot.BlogPost, error) {
	return fetchAll(ctx, s, "blog_posts", blogPostsQuery, scanBlogPost)
}

// MarketplaceListings returns listings joined with the collection item and seller.
func (s *Store) MarketplaceListings(ctx context.Context) ([]snapshot.MarketplaceListing, error) {
	return fetchAll(ctx, s, "marketplace_items", listingsQuery, scanListing)
}

type authorRow struct {
	id     pgtype.Text
	name   pgtype.Text
	avatar pgtype.Text
	rank   pgtype.Text
}

func (a *authorRow) dest() []any {
	return []any{&a.id, &a.name, &a.avatar, &a.rank}
}

func (a *authorRow) author() snapshot.Author {
	return snapshot.Author{
		ID:          textValue(a.id),
		DisplayName: textValue(a.name),
		AvatarURL:   textPtr(a.avatar),
		Rank:        textPtr(a.rank),
	}
}

func scanCatalogEntry(rows pgx.Rows) (snapshot.CatalogEntry, error) {
	var (
		e        snapshot.CatalogEntry
		optional [15]pgtype.Text
		images   [6]pgtype.Text
		updated  pgtype.Timestamptz
	)
	dest := []any{&e.ID, &e.Country, &e.FaceValue}
	for i := range optional {
		dest = append(dest, &optional[i])
	}
	dest = append(dest, &e.Signatures)
	for i := range images {
		dest = append(dest, &images[i])
	}
	dest = append(dest, &e.Approved, &e.Pending, &updated)
	if err := rows.Scan(dest...); err != nil {
		return snapshot.CatalogEntry{}, err
	}

	fields := []**string{
		&e.GregorianYear, &e.IslamicYear, &e.PickNumber, &e.ExtendedPickNumber,
		&e.SultanName, &e.Printer, &e.Rarity, &e.SecurityElement, &e.Dimensions,
		&e.Colors, &e.SealNames, &e.Category, &e.Type, &e.Description,
		&e.HistoricalDescription,
	}
	for i, f := range fields {
		*f = textPtr(optional[i])
	}
	e.Images = snapshot.ImageSet{
		FrontOriginal:    textPtr(images[0]),
		BackOriginal:     textPtr(images[1]),
		FrontWatermarked: textPtr(images[2]),
		BackWatermarked:  textPtr(images[3]),
		FrontThumbnail:   textPtr(images[4]),
		BackThumbnail:    textPtr(images[5]),
	}
	e.UpdatedAt = timePtr(updated)
	return e, nil
}

func scanCountry(rows pgx.Rows) (snapshot.CountryGroup, error) {
	var (
		c           snapshot.CountryGroup
		image, desc pgtype.Text
	)
	if err := rows.Scan(&c.Name, &image, &desc); err != nil {
		return snapshot.CountryGroup{}, err
	}
	c.ImageURL = textPtr(image)
	c.Description = textPtr(desc)
	return c, nil
}

func scanForumPost(announcement bool) func(pgx.Rows) (snapshot.ForumPost, error) {
	return func(rows pgx.Rows) (snapshot.ForumPost, error) {
		var (
			p        snapshot.ForumPost
			title    pgtype.Text
			content  pgtype.Text
			updated  pgtype.Timestamptz
			comments int64
			author   authorRow
		)
		dest := append([]any{&p.ID, &title, &content, &p.CreatedAt, &updated, &p.ImageURLs, &comments}, author.dest()...)
		if err := rows.Scan(dest...); err != nil {
			return snapshot.ForumPost{}, err
		}
		p.Title = textValue(title)
		p.Content = textValue(content)
		p.UpdatedAt = timePtr(updated)
		p.CommentCount = int(comments)
		p.Author = author.author()
		p.Announcement = announcement
		return p, nil
	}
}

func scanBlogPost(rows pgx.Rows) (snapshot.BlogPost, error) {
	var (
		p        snapshot.BlogPost
		title    pgtype.Text
		content  pgtype.Text
		excerpt  pgtype.Text
		updated  pgtype.Timestamptz
		image    pgtype.Text
		comments int64
		author   authorRow
	)
	dest := append([]any{&p.ID, &title, &content, &excerpt, &p.CreatedAt, &updated, &image, &comments}, author.dest()...)
	if err := rows.Scan(dest...); err != nil {
		return snapshot.BlogPost{}, err
	}
	p.Title = textValue(title)
	p.Content = textValue(content)
	p.Excerpt = textPtr(excerpt)
	p.UpdatedAt = timePtr(updated)
	p.FeaturedImage = textPtr(image)
	p.CommentCount = int(comments)
	p.Author = author.author()
	return p, nil
}

func scanListing(rows pgx.Rows) (snapshot.MarketplaceListing, error) {
	var (
		l                      snapshot.MarketplaceListing
		status                 string
		condition, grade, note pgtype.Text
		obverse, reverse       pgtype.Text
		price                  pgtype.Float8
		author                 authorRow
	)
	dest := append([]any{
		&l.ID, &status, &l.CreatedAt,
		&l.Item.ID, &l.Item.BanknoteID, &condition, &grade, &price, &note, &obverse, &reverse,
	}, author.dest()...)
	if err := rows.Scan(dest...); err != nil {
		return snapshot.MarketplaceListing{}, err
	}
	l.Status = snapshot.ListingStatus(status)
	l.Item.Condition = textPtr(condition)
	l.Item.Grade = textPtr(grade)
	l.Item.SalePrice = floatPtr(price)
	l.Item.PublicNote = textPtr(note)
	l.Item.ObverseImage = textPtr(obverse)
	l.Item.ReverseImage = textPtr(reverse)
	l.Seller = author.author()
	return l, nil
}
