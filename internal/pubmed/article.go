package pubmed

// Article is one normalized bibliographic record extracted from an EFetch
// document. Optional fields are empty strings when the source record lacks
// them; nothing here is guaranteed beyond PMID and URL.
type Article struct {
	PMID     string
	Title    string
	Authors  string
	Journal  string
	PubDate  string
	DOI      string
	URL      string
	Abstract string
	PubTypes []string

	// Filled in by the summarization step.
	TitleJA string
	Bullets []string
}

// pubTypeLabelsJA maps PubMed publication-type labels to their Japanese
// display form. Labels without an entry pass through untranslated.
var pubTypeLabelsJA = map[string]string{
	"Journal Article":             "原著論文",
	"Review":                      "総説",
	"Systematic Review":           "システマティックレビュー",
	"Meta-Analysis":               "メタ解析",
	"Case Reports":                "症例報告",
	"Clinical Trial":              "臨床試験",
	"Randomized Controlled Trial": "ランダム化比較試験",
	"Multicenter Study":           "多施設共同研究",
	"Observational Study":         "観察研究",
	"Comparative Study":           "比較研究",
	"Practice Guideline":          "診療ガイドライン",
	"Editorial":                   "論説",
	"Letter":                      "レター",
	"Comment":                     "コメント",
	"Published Erratum":           "正誤表",
}

// TranslatePubTypes returns display labels for the given publication types.
// lang "ja" applies the fixed Japanese label map; any other value returns
// the labels unchanged.
func TranslatePubTypes(types []string, lang string) []string {
	if lang != "ja" || len(types) == 0 {
		return types
	}
	out := make([]string, len(types))
	for i, t := range types {
		if ja, ok := pubTypeLabelsJA[t]; ok {
			out[i] = ja
		} else {
			out[i] = t
		}
	}
	return out
}
