package snapshot

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPageNameIsDeterministic(t *testing.T) {
	t.Parallel()

	cases := []struct {
		kind Kind
		key  string
		want string
	}{
		{KindHome, "", "index.html"},
		{KindCatalog, "", "catalog.html"},
		{KindForum, "", "forum.html"},
		{KindBlog, "", "blog.html"},
		{KindMarketplace, "", "marketplace.html"},
		{KindAbout, "", "about.html"},
		{KindContact, "", "contact.html"},
		{KindGuide, "", "guide.html"},
		{KindCatalogItem, "abc123", "catalog-banknote-abc123.html"},
		{KindForumPost, "p1", "forum-post-p1.html"},
		{KindBlogPost, "b1", "blog-post-b1.html"},
		{KindMarketplaceItem, "m1", "marketplace-item-m1.html"},
		{KindCountry, "Bosnia & Herzegovina", "catalog-Bosnia%20%26%20Herzegovina.html"},
		{KindCountry, "Côte d'Ivoire", "catalog-C%C3%B4te%20d'Ivoire.html"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, PageName(tc.kind, tc.key), "%s/%s", tc.kind, tc.key)
		require.Equal(t, PageName(tc.kind, tc.key), PageName(tc.kind, tc.key))
	}
}

func TestCanonicalPath(t *testing.T) {
	t.Parallel()

	require.Equal(t, "/", CanonicalPath(KindHome, ""))
	require.Equal(t, "/catalog", CanonicalPath(KindCatalog, ""))
	require.Equal(t, "/catalog/Bosnia%20%26%20Herzegovina", CanonicalPath(KindCountry, "Bosnia & Herzegovina"))
	require.Equal(t, "/catalog-banknote/abc123", CanonicalPath(KindCatalogItem, "abc123"))
	require.Equal(t, "/marketplace-item/x%2Fy", CanonicalPath(KindMarketplaceItem, "x/y"))
}

func TestEncodeURIComponentMatchesECMAScript(t *testing.T) {
	t.Parallel()

	require.Equal(t, "a-_.!~*'()", EncodeURIComponent("a-_.!~*'()"))
	require.Equal(t, "%20%26%3D%3F%2F%23%2B", EncodeURIComponent(" &=?/#+"))
}
