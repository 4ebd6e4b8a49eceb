package schools

import (
	"context"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/AssetMappr/AM-Ingest/internal/ingest/provider"
)

const categoryEducation = "Education and workforce development"

func init() {
	provider.RegisterProvider(provider.ProviderSchools, func(cfg provider.Config) (provider.AssetProvider, error) {
		return NewAdapter(NewClient(cfg)), nil
	})
}

// Adapter concatenates the three NCES sub-feeds (private, public,
// postsecondary) into one record set under the education category.
type Adapter struct {
	client *Client
	titler cases.Caser
}

// NewAdapter creates a schools adapter from its feed client.
func NewAdapter(client *Client) *Adapter {
	return &Adapter{
		client: client,
		titler: cases.Title(language.AmericanEnglish),
	}
}

func (a *Adapter) Name() string { return "schools" }

// Fetch queries each sub-feed and normalizes its features. A failing
// sub-feed contributes nothing; the other feeds still run.
func (a *Adapter) Fetch(ctx context.Context, q provider.Query) ([]provider.AssetRecord, error) {
	start := time.Now()
	records := []provider.AssetRecord{}

	feeds := []struct {
		description string
		fetch       func(context.Context) ([]School, error)
	}{
		{"Private school", func(ctx context.Context) ([]School, error) {
			return a.client.Private(ctx, q.CountyFIPS)
		}},
		{"Public school", func(ctx context.Context) ([]School, error) {
			return a.client.Public(ctx, q.StateCode, q.CountyName)
		}},
		{"Postsecondary school", func(ctx context.Context) ([]School, error) {
			return a.client.PostSecondary(ctx, q.CountyFIPS)
		}},
	}

	for _, feed := range feeds {
		schools, err := feed.fetch(ctx)
		if err != nil {
			provider.LogError("schools", feed.description, err)
			continue
		}
		for _, s := range schools {
			records = append(records, a.toRecord(s, feed.description))
		}
	}

	provider.LogTransform("schools", len(records), len(records), time.Since(start))
	return records, nil
}

func (a *Adapter) toRecord(s School, description string) provider.AssetRecord {
	lat, lng := s.Lat, s.Lng
	address := s.Street
	if s.City != "" {
		address += ", " + s.City
	}

	return provider.AssetRecord{
		// Feed names arrive in inconsistent upper case.
		Name:        a.titler.String(s.Name),
		Category:    categoryEducation,
		Description: description,
		Address:     address,
		Latitude:    &lat,
		Longitude:   &lng,
		Source:      provider.SourceSchoolsFeed,
	}
}
