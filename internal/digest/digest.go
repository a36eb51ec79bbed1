// Package digest renders the plain-text digest mail from enriched article
// records. It is pure formatting: no network, no state.
package digest

import (
	"fmt"
	"strings"
	"time"

	"github.com/ryosukesatoh/pubmed-digest/internal/pubmed"
)

// Subject builds the mail subject line for one run, dated in the given
// location.
func Subject(topic string, now time.Time, loc *time.Location) string {
	return fmt.Sprintf("新着論文AI要約配信（%s）%s", topic, now.In(loc).Format("2006-01-02"))
}

// Body renders the digest body. An empty article list still renders the
// header and a zero-count line.
func Body(topic string, articles []pubmed.Article) string {
	var sb strings.Builder

	sb.WriteString("新着論文AI要約配信\n\n")
	sb.WriteString(topic + "\n\n")
	sb.WriteString(fmt.Sprintf("本日の新着論文は%d件です。\n\n", len(articles)))

	for i, a := range articles {
		sb.WriteString(fmt.Sprintf("[論文%d]\n", i+1))
		sb.WriteString(fmt.Sprintf("原題：%s\n", a.Title))
		sb.WriteString(fmt.Sprintf("邦題（AI要約）：%s\n", a.TitleJA))
		if a.Authors != "" {
			sb.WriteString(fmt.Sprintf("著者：%s\n", a.Authors))
		}
		sb.WriteString(fmt.Sprintf("雑誌名：%s\n", a.Journal))
		sb.WriteString(fmt.Sprintf("発行日：%s\n", a.PubDate))
		if len(a.PubTypes) > 0 {
			sb.WriteString(fmt.Sprintf("掲載区分：%s\n", strings.Join(a.PubTypes, "、")))
		}
		sb.WriteString(fmt.Sprintf("Pubmed：%s\n", a.URL))
		doi := a.DOI
		if doi == "" {
			doi = "-"
		}
		sb.WriteString(fmt.Sprintf("DOI：%s\n", doi))
		sb.WriteString("要約（AI生成）：\n")
		sb.WriteString(strings.Join(a.Bullets, "\n"))
		sb.WriteString("\n\n")
	}

	return sb.String()
}
