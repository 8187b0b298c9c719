package service

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"strings"
	"time"

	"agency-backend/internal/repository"
)

// SEOService renders the public content endpoints (robots.txt, sitemap.xml,
// JSON-LD, search-console verification) from website settings rows.
type SEOService interface {
	Robots(ctx context.Context) (string, error)
	Sitemap(ctx context.Context) (string, error)
	JSONLD(ctx context.Context) (map[string]interface{}, error)
	GSCVerification(ctx context.Context) (string, error)
}

type seoServiceImpl struct {
	settingsRepo repository.SettingsRepository
	catalogRepo  repository.CatalogRepository
	siteURL      string
}

func NewSEOService(
	settingsRepo repository.SettingsRepository,
	catalogRepo repository.CatalogRepository,
	siteURL string,
) SEOService {
	return &seoServiceImpl{
		settingsRepo: settingsRepo,
		catalogRepo:  catalogRepo,
		siteURL:      strings.TrimRight(siteURL, "/"),
	}
}

func (s *seoServiceImpl) Robots(ctx context.Context) (string, error) {
	extra, err := s.settingsRepo.Get(ctx, "robots_extra")
	if err != nil && !errors.Is(err, repository.ErrSettingNotFound) {
		return "", fmt.Errorf("get robots_extra: %w", err)
	}

	var b strings.Builder
	b.WriteString("User-agent: *\n")
	b.WriteString("Allow: /\n")
	b.WriteString("Disallow: /admin\n")
	b.WriteString("Disallow: /api\n")
	if extra != "" {
		b.WriteString(extra)
		if !strings.HasSuffix(extra, "\n") {
			b.WriteString("\n")
		}
	}
	fmt.Fprintf(&b, "Sitemap: %s/sitemap.xml\n", s.siteURL)

	return b.String(), nil
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

func (s *seoServiceImpl) Sitemap(ctx context.Context) (string, error) {
	today := time.Now().Format("2006-01-02")

	set := sitemapURLSet{
		Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9",
	}
	for _, path := range []string{"", "/services", "/packages", "/contact", "/blog"} {
		set.URLs = append(set.URLs, sitemapURL{Loc: s.siteURL + path, LastMod: today})
	}

	packages, err := s.catalogRepo.ActivePackages(ctx)
	if err != nil {
		return "", fmt.Errorf("get packages: %w", err)
	}
	for _, pkg := range packages {
		set.URLs = append(set.URLs, sitemapURL{
			Loc:     fmt.Sprintf("%s/packages/%s", s.siteURL, pkg.Slug),
			LastMod: pkg.UpdatedAt.Format("2006-01-02"),
		})
	}

	out, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal sitemap: %w", err)
	}

	return xml.Header + string(out), nil
}

func (s *seoServiceImpl) JSONLD(ctx context.Context) (map[string]interface{}, error) {
	settings, err := s.settingsRepo.GetMany(ctx, []string{
		"site_name", "site_tagline", "contact_email", "contact_phone", "contact_address",
		"social_instagram", "social_linkedin",
	})
	if err != nil {
		return nil, fmt.Errorf("get settings: %w", err)
	}

	ld := map[string]interface{}{
		"@context": "https://schema.org",
		"@type":    "Organization",
		"name":     settings["site_name"],
		"url":      s.siteURL,
	}
	if v := settings["site_tagline"]; v != "" {
		ld["description"] = v
	}
	if v := settings["contact_email"]; v != "" {
		ld["email"] = v
	}
	if v := settings["contact_phone"]; v != "" {
		ld["telephone"] = v
	}
	if v := settings["contact_address"]; v != "" {
		ld["address"] = v
	}

	var sameAs []string
	for _, key := range []string{"social_instagram", "social_linkedin"} {
		if v := settings[key]; v != "" {
			sameAs = append(sameAs, v)
		}
	}
	if len(sameAs) > 0 {
		ld["sameAs"] = sameAs
	}

	return ld, nil
}

func (s *seoServiceImpl) GSCVerification(ctx context.Context) (string, error) {
	token, err := s.settingsRepo.Get(ctx, "gsc_verification")
	if err != nil {
		if errors.Is(err, repository.ErrSettingNotFound) {
			return "", err
		}
		return "", fmt.Errorf("get gsc_verification: %w", err)
	}
	return "google-site-verification: " + token, nil
}
