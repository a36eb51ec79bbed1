package pubmed

import (
	"encoding/xml"
	"fmt"
	"log"
	"strconv"
	"strings"
)

// EFetch XML structures. Only the fields the digest needs are mapped; the
// schema is inconsistently populated, so every extraction below tolerates
// absent elements.

type articleSet struct {
	XMLName  xml.Name       `xml:"PubmedArticleSet"`
	Articles []pubmedRecord `xml:"PubmedArticle"`
}

type pubmedRecord struct {
	Citation   medlineCitation `xml:"MedlineCitation"`
	PubmedData pubmedData      `xml:"PubmedData"`
}

type medlineCitation struct {
	PMID        string         `xml:"PMID"`
	Article     articleElem    `xml:"Article"`
	JournalInfo medlineJournal `xml:"MedlineJournalInfo"`
}

type medlineJournal struct {
	MedlineTA string `xml:"MedlineTA"`
}

type articleElem struct {
	Title        flatText      `xml:"ArticleTitle"`
	Journal      journalElem   `xml:"Journal"`
	Abstract     abstractElem  `xml:"Abstract"`
	AuthorList   authorList    `xml:"AuthorList"`
	ArticleDates []articleDate `xml:"ArticleDate"`
	PubTypes     []string      `xml:"PublicationTypeList>PublicationType"`
}

type journalElem struct {
	Title           string    `xml:"Title"`
	ISOAbbreviation string    `xml:"ISOAbbreviation"`
	Issue           issueElem `xml:"JournalIssue"`
}

type issueElem struct {
	PubDate pubDateElem `xml:"PubDate"`
}

type pubDateElem struct {
	Year        string `xml:"Year"`
	Month       string `xml:"Month"`
	Day         string `xml:"Day"`
	MedlineDate string `xml:"MedlineDate"`
}

type articleDate struct {
	DateType string `xml:"DateType,attr"`
	Year     string `xml:"Year"`
	Month    string `xml:"Month"`
	Day      string `xml:"Day"`
}

type abstractElem struct {
	Sections []abstractSection `xml:"AbstractText"`
}

type authorList struct {
	Authors []authorElem `xml:"Author"`
}

type authorElem struct {
	LastName string `xml:"LastName"`
	Initials string `xml:"Initials"`
}

type pubmedData struct {
	History    []statusDate `xml:"History>PubMedPubDate"`
	ArticleIDs []articleID  `xml:"ArticleIdList>ArticleId"`
}

type statusDate struct {
	PubStatus string `xml:"PubStatus,attr"`
	Year      string `xml:"Year"`
	Month     string `xml:"Month"`
	Day       string `xml:"Day"`
}

type articleID struct {
	IDType string `xml:"IdType,attr"`
	Value  string `xml:",chardata"`
}

// flatText collects every piece of character data nested under an element,
// so inline markup (<i>, <sub>, <sup>) does not drop text. Whitespace runs
// collapse to single spaces.
type flatText string

func (t *flatText) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var sb strings.Builder
	depth := 1
	for depth > 0 {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch tok := tok.(type) {
		case xml.StartElement:
			depth++
		case xml.EndElement:
			depth--
		case xml.CharData:
			sb.Write(tok)
		}
	}
	*t = flatText(collapseSpace(sb.String()))
	return nil
}

// abstractSection is one AbstractText element: an optional Label attribute
// plus the flattened nested text.
type abstractSection struct {
	Label string
	Text  string
}

func (s *abstractSection) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for _, attr := range start.Attr {
		if attr.Name.Local == "Label" {
			s.Label = attr.Value
		}
	}
	var text flatText
	if err := text.UnmarshalXML(d, start); err != nil {
		return err
	}
	s.Text = string(text)
	return nil
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Parse extracts normalized Article records from one EFetch XML document.
// Missing optional fields yield empty values; only a document that fails to
// decode at all is an error.
func Parse(doc []byte) ([]Article, error) {
	if len(doc) == 0 {
		return nil, nil
	}

	var set articleSet
	if err := xml.Unmarshal(doc, &set); err != nil {
		return nil, fmt.Errorf("pubmed: failed to parse efetch XML: %w", err)
	}

	articles := make([]Article, 0, len(set.Articles))
	for _, rec := range set.Articles {
		pmid := strings.TrimSpace(rec.Citation.PMID)
		title := string(rec.Citation.Article.Title)
		if len([]rune(title)) < 2 {
			log.Printf("pubmed: suspiciously short title for PMID %s: %q", pmid, title)
		}

		articles = append(articles, Article{
			PMID:     pmid,
			Title:    title,
			Authors:  authorLine(rec.Citation.Article.AuthorList.Authors),
			Journal:  journalName(rec),
			PubDate:  publicationDate(rec),
			DOI:      doi(rec.PubmedData.ArticleIDs),
			URL:      fmt.Sprintf("https://pubmed.ncbi.nlm.nih.gov/%s/", pmid),
			Abstract: abstractText(rec.Citation.Article.Abstract.Sections),
			PubTypes: dedupe(rec.Citation.Article.PubTypes),
		})
	}
	return articles, nil
}

// abstractText renders labeled sections as "Label: text" and unlabeled ones
// as bare text, joined by newlines in document order.
func abstractText(sections []abstractSection) string {
	var parts []string
	for _, s := range sections {
		if s.Text == "" {
			continue
		}
		if s.Label != "" {
			parts = append(parts, fmt.Sprintf("%s: %s", s.Label, s.Text))
		} else {
			parts = append(parts, s.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// authorLine joins the first three authors as "Last Initials" and appends
// the ほか marker when more exist. No authors yields an empty string.
func authorLine(authors []authorElem) string {
	var names []string
	for _, a := range authors {
		name := strings.TrimSpace(strings.TrimSpace(a.LastName) + " " + strings.TrimSpace(a.Initials))
		if name != "" {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return ""
	}
	shown := names
	if len(names) > 3 {
		shown = names[:3]
	}
	line := strings.Join(shown, ", ")
	if len(names) > 3 {
		line += " ほか"
	}
	return line
}

// journalName prefers the ISO abbreviation, then the Medline abbreviation,
// then the full journal title.
func journalName(rec pubmedRecord) string {
	for _, candidate := range []string{
		rec.Citation.Article.Journal.ISOAbbreviation,
		rec.Citation.JournalInfo.MedlineTA,
		rec.Citation.Article.Journal.Title,
	} {
		if s := strings.TrimSpace(candidate); s != "" {
			return s
		}
	}
	return ""
}

// publicationDate tries, in order: the electronic ArticleDate, any other
// ArticleDate, the structured issue PubDate (then its free-text
// MedlineDate), and finally the "pubmed" history status date.
func publicationDate(rec pubmedRecord) string {
	for _, d := range rec.Citation.Article.ArticleDates {
		if strings.EqualFold(d.DateType, "Electronic") {
			if s := formatDate(d.Year, d.Month, d.Day); s != "" {
				return s
			}
		}
	}
	for _, d := range rec.Citation.Article.ArticleDates {
		if s := formatDate(d.Year, d.Month, d.Day); s != "" {
			return s
		}
	}

	pd := rec.Citation.Article.Journal.Issue.PubDate
	if s := formatDate(pd.Year, pd.Month, pd.Day); s != "" {
		return s
	}
	if s := collapseSpace(pd.MedlineDate); s != "" {
		return s
	}

	for _, h := range rec.PubmedData.History {
		if strings.EqualFold(h.PubStatus, "pubmed") {
			if s := formatDate(h.Year, h.Month, h.Day); s != "" {
				return s
			}
		}
	}
	return ""
}

var monthNames = map[string]string{
	"jan": "Jan", "january": "Jan",
	"feb": "Feb", "february": "Feb",
	"mar": "Mar", "march": "Mar",
	"apr": "Apr", "april": "Apr",
	"may": "May",
	"jun": "Jun", "june": "Jun",
	"jul": "Jul", "july": "Jul",
	"aug": "Aug", "august": "Aug",
	"sep": "Sep", "september": "Sep",
	"oct": "Oct", "october": "Oct",
	"nov": "Nov", "november": "Nov",
	"dec": "Dec", "december": "Dec",
}

var monthAbbrevs = []string{
	"Jan", "Feb", "Mar", "Apr", "May", "Jun",
	"Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
}

// normalizeMonth maps "1", "01", "Jan", or "January" to "Jan". Unrecognized
// tokens pass through untouched.
func normalizeMonth(m string) string {
	m = strings.TrimSpace(m)
	if m == "" {
		return ""
	}
	if n, err := strconv.Atoi(m); err == nil && n >= 1 && n <= 12 {
		return monthAbbrevs[n-1]
	}
	if abbr, ok := monthNames[strings.ToLower(m)]; ok {
		return abbr
	}
	return m
}

// formatDate renders "YYYY Mon DD", "YYYY Mon", or "YYYY" depending on
// which fields are present. A missing year yields the empty string.
func formatDate(year, month, day string) string {
	year = strings.TrimSpace(year)
	if year == "" {
		return ""
	}
	month = normalizeMonth(month)
	if month == "" {
		return year
	}
	day = strings.TrimSpace(day)
	if day == "" {
		return year + " " + month
	}
	if len(day) == 1 {
		day = "0" + day
	}
	return year + " " + month + " " + day
}

// doi returns the first identifier whose type tag is "doi", ignoring case.
func doi(ids []articleID) string {
	for _, id := range ids {
		if strings.EqualFold(strings.TrimSpace(id.IDType), "doi") {
			return strings.TrimSpace(id.Value)
		}
	}
	return ""
}

// dedupe removes duplicate labels while preserving first-seen order.
func dedupe(labels []string) []string {
	var out []string
	seen := make(map[string]bool, len(labels))
	for _, l := range labels {
		l = strings.TrimSpace(l)
		if l == "" || seen[l] {
			continue
		}
		seen[l] = true
		out = append(out, l)
	}
	return out
}
