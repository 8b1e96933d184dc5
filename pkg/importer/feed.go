package importer

import (
	"fmt"

	"github.com/hazyhaar/showroom/pkg/site"
)

// Kind selects how a feed body is validated.
type Kind string

const (
	KindProducts Kind = "products"
	KindProjects Kind = "projects"
)

// ProjectsFeedID is the feed id of the portfolio file.
const ProjectsFeedID = "projects"

// Feed is an upstream JSON document that replaces one content file.
type Feed struct {
	ID          string
	Kind        Kind
	File        string // manifest-relative target
	Description string
	DefaultURL  string // from the manifest, may be empty
}

// Feeds lists one feed per brand, in manifest order, then the projects feed.
func Feeds(m *site.Manifest) []Feed {
	feeds := make([]Feed, 0, len(m.Brands)+1)
	for _, b := range m.Brands {
		feeds = append(feeds, Feed{
			ID:          b.ID,
			Kind:        KindProducts,
			File:        b.File,
			Description: b.Label + " products",
			DefaultURL:  b.FeedURL,
		})
	}
	return append(feeds, Feed{
		ID:          ProjectsFeedID,
		Kind:        KindProjects,
		File:        m.Projects.File,
		Description: "Portfolio projects",
		DefaultURL:  m.Projects.FeedURL,
	})
}

// FindFeed returns the feed with the given id.
func FindFeed(feeds []Feed, id string) (Feed, error) {
	for _, f := range feeds {
		if f.ID == id {
			return f, nil
		}
	}
	return Feed{}, fmt.Errorf("unknown import source: %q", id)
}
