package discovery

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/samber/lo"
)

var emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)

// socialHosts are the link domains worth carrying into the Contact column.
var socialHosts = []string{"instagram.com", "twitter.com", "x.com", "tiktok.com", "linktr.ee", "beacons.ai"}

// ContactScraper pulls contact hints off a channel's public about page:
// e-mail addresses in the description and outbound social links. YouTube hides
// business e-mails behind a captcha, so this only catches what creators paste
// in the open; an empty result is common and fine.
type ContactScraper struct {
	httpClient *http.Client
	baseURL    string
}

func NewContactScraper() *ContactScraper {
	return &ContactScraper{
		httpClient: &http.Client{},
		baseURL:    "https://www.youtube.com",
	}
}

// Scrape fetches the about page for a handle like "@somecreator" and returns
// a comma-joined contact string, empty when nothing public was found.
func (s *ContactScraper) Scrape(ctx context.Context, handle string) (string, error) {
	if !strings.HasPrefix(handle, "@") {
		handle = "@" + handle
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/"+handle+"/about", nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; ytscout/1.0)")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch about page for %s: %w", handle, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("about page for %s: status %d", handle, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("parse about page for %s: %w", handle, err)
	}

	var contacts []string
	contacts = append(contacts, emailPattern.FindAllString(doc.Text(), 3)...)

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok {
			return
		}
		if lo.SomeBy(socialHosts, func(host string) bool { return strings.Contains(href, host) }) {
			contacts = append(contacts, href)
		}
	})

	return strings.Join(lo.Uniq(contacts), ", "), nil
}
