package summarizer

import (
	"strings"
	"testing"
)

func TestFormatBulletsContract(t *testing.T) {
	tests := []struct {
		name  string
		input []string
	}{
		{"nil input", nil},
		{"empty strings", []string{"", "  ", ""}},
		{"too few", []string{"局所制御率は改善した"}},
		{"too many", []string{"a", "b", "c", "d", "e", "f"}},
		{"foreign markers", []string{"- point", "• point", "* point", "・point"}},
		{"oversized", []string{strings.Repeat("あ", 400)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatBullets(tt.input)
			if len(got) != BulletCount {
				t.Fatalf("Expected exactly %d bullets, got %d", BulletCount, len(got))
			}
			for i, b := range got {
				if !strings.HasPrefix(b, "・") {
					t.Errorf("Bullet %d missing canonical marker: %q", i, b)
				}
				if n := len([]rune(b)); n > 150 {
					t.Errorf("Bullet %d has %d runes, want <= 150", i, n)
				}
			}
		})
	}
}

func TestFormatBulletsReplacesMarkers(t *testing.T) {
	got := FormatBullets([]string{"- OS中央値は28.4ヶ月", "•　毒性は許容範囲", "３年", "x"})
	if got[0] != "・OS中央値は28.4ヶ月" {
		t.Errorf("Expected hyphen marker replaced, got %q", got[0])
	}
	if got[1] != "・毒性は許容範囲" {
		t.Errorf("Expected bullet marker and ideographic space stripped, got %q", got[1])
	}
}

func TestFormatBulletsPadsShortfall(t *testing.T) {
	got := FormatBullets([]string{"一点のみ"})
	if got[0] != "・一点のみ" {
		t.Errorf("Unexpected first bullet %q", got[0])
	}
	for i := 1; i < BulletCount; i++ {
		if got[i] != ShortfallBullet {
			t.Errorf("Expected shortfall placeholder at %d, got %q", i, got[i])
		}
	}
}

func TestFormatBulletsTruncates(t *testing.T) {
	long := strings.Repeat("あ", 200)
	got := FormatBullets([]string{long})
	r := []rune(got[0])
	if len(r) != 148 {
		t.Errorf("Expected 147 runes plus ellipsis, got %d runes", len(r))
	}
	if r[len(r)-1] != '…' {
		t.Errorf("Expected ellipsis terminator, got %q", string(r[len(r)-1]))
	}
}

func TestCleanTitle(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"限局性前立腺癌に対する寡分割照射の長期成績", "限局性前立腺癌に対する寡分割照射の長期成績"},
		{"・邦題です。", "邦題です"},
		{"[邦題] ", "邦題]"},
		{"- 邦題．", "邦題"},
		{"  邦題.  ", "邦題"},
		{"", ""},
		{"・-• 　", ""},
	}
	for _, tt := range tests {
		if got := CleanTitle(tt.input); got != tt.want {
			t.Errorf("CleanTitle(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestSanitizeBulletsRemovesFabricatedNumbers(t *testing.T) {
	abstract := "Median OS was 28.4 months in the SBRT arm."
	bullets := []string{
		"・OS中央値は28.4ヶ月であった",
		"・奏効率は52%と報告された",
	}

	got := SanitizeBullets(bullets, abstract)

	if !strings.Contains(got[0], "28.4") {
		t.Errorf("Verbatim value must survive, got %q", got[0])
	}
	if strings.Contains(got[1], "52") {
		t.Errorf("Fabricated value must be removed, got %q", got[1])
	}
}

func TestSanitizeBulletsRemovesFabricatedCompounds(t *testing.T) {
	abstract := "Patients with EGFR-mutant tumors were enrolled."
	bullets := []string{
		"・EGFR-mutant 腫瘍が対象であった",
		"・KRAS-G12C 変異例も含まれた",
	}

	got := SanitizeBullets(bullets, abstract)

	if !strings.Contains(got[0], "EGFR-mutant") {
		t.Errorf("Verbatim compound must survive, got %q", got[0])
	}
	if strings.Contains(got[1], "KRAS-G12C") {
		t.Errorf("Fabricated compound must be removed, got %q", got[1])
	}
}
