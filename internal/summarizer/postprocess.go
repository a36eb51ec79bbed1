package summarizer

import "strings"

// The digest contract: every article gets exactly four bullets, each
// starting with the canonical marker and at most 150 runes long. The model
// frequently violates this, so enforcement happens here regardless of what
// came back.
const (
	bulletMarker   = "・"
	BulletCount    = 4
	maxBulletRunes = 150

	// ShortfallBullet pads summaries that came back with fewer than four
	// points.
	ShortfallBullet = "・（要約が不足しています）"

	// TitleFallback replaces a title when both the summarization and the
	// title-only translation produced nothing usable.
	TitleFallback = "（邦題生成に失敗）"

	// NoAbstractBullet stands in for the whole summary when PubMed has no
	// abstract for the article.
	NoAbstractBullet = "・この論文にはPubMed上でアブストラクトが見つかりません"
)

const (
	bulletPrefixCutset = "・-•* 　"
	titlePrefixCutset  = "・-•*[]() 　"
)

// FormatBullets normalizes model-returned bullet lines to the contract:
// strip any existing marker, re-apply the canonical one, cap at four, pad
// to four, and truncate over-length lines to 147 runes plus an ellipsis.
func FormatBullets(lines []string) []string {
	var xs []string
	for _, l := range lines {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		l = strings.TrimSpace(strings.TrimLeft(l, bulletPrefixCutset))
		xs = append(xs, bulletMarker+l)
	}
	if len(xs) > BulletCount {
		xs = xs[:BulletCount]
	}
	for len(xs) < BulletCount {
		xs = append(xs, ShortfallBullet)
	}
	for i, x := range xs {
		r := []rune(x)
		if len(r) > maxBulletRunes {
			xs[i] = string(r[:maxBulletRunes-3]) + "…"
		}
	}
	return xs
}

// CleanTitle strips leading bullet/bracket/space characters and one
// trailing sentence terminator. The result may be empty; the caller is
// responsible for the fallback chain.
func CleanTitle(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimLeft(s, titlePrefixCutset)
	s = strings.TrimSpace(s)
	for _, term := range []string{"。", "．", "."} {
		if strings.HasSuffix(s, term) {
			s = strings.TrimSuffix(s, term)
			break
		}
	}
	return strings.TrimSpace(s)
}
