package app

import (
	"encoding/xml"
	"io"
	"strings"
	"time"
)

const sitemapNS = "http://www.sitemaps.org/schemas/sitemap/0.9"

type SitemapEntry struct {
	Loc        string  `xml:"loc"`
	LastMod    string  `xml:"lastmod"`
	ChangeFreq string  `xml:"changefreq"`
	Priority   float64 `xml:"priority"`
}

type urlSet struct {
	XMLName xml.Name       `xml:"urlset"`
	NS      string         `xml:"xmlns,attr"`
	URLs    []SitemapEntry `xml:"url"`
}

// Sitemap lists the home page, every airport page and every country page that has airports.
func (s *PageService) Sitemap(siteURL string, lastMod time.Time) []SitemapEntry {
	base := strings.TrimRight(siteURL, "/")
	mod := lastMod.UTC().Format(time.RFC3339)

	out := []SitemapEntry{{Loc: base + "/", LastMod: mod, ChangeFreq: "weekly", Priority: 1}}
	for _, a := range s.cat.Airports() {
		out = append(out, SitemapEntry{Loc: base + AirportPath(a.IATA), LastMod: mod, ChangeFreq: "monthly", Priority: 0.8})
	}
	for _, co := range s.cat.CountriesWithAirports() {
		out = append(out, SitemapEntry{Loc: base + CountryPath(co.Code), LastMod: mod, ChangeFreq: "monthly", Priority: 0.7})
	}
	return out
}

func WriteSitemap(w io.Writer, entries []SitemapEntry) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(urlSet{NS: sitemapNS, URLs: entries}); err != nil {
		return err
	}
	return enc.Flush()
}
