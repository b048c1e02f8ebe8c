package generator

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepairScenarios(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "bare html gets doctype and lang",
			in:   "<html><body>hi</body></html>",
			want: "<!DOCTYPE html>\n<html lang=\"en\"><body>hi</body></html>",
		},
		{
			name: "malformed doctype with leaked lang",
			in:   "<!DOCTYPE < lang=\"en\">text",
			want: "<!DOCTYPE html>\n<html lang=\"en\">\ntext\n</html>",
		},
		{
			name: "already canonical",
			in:   "<!DOCTYPE html>\n<html lang=\"en\"><body></body></html>",
			want: "<!DOCTYPE html>\n<html lang=\"en\"><body></body></html>",
		},
		{
			name: "leading doctype kept as written",
			in:   "<!doctype html><html lang=\"en\"></html>",
			want: "<!doctype html><html lang=\"en\"></html>",
		},
		{
			name: "other lang value is overwritten",
			in:   "<!DOCTYPE html>\n<html lang=\"fr\" class=\"x\"></html>",
			want: "<!DOCTYPE html>\n<html lang=\"en\" class=\"x\"></html>",
		},
		{
			name: "unquoted lang is overwritten",
			in:   "<!DOCTYPE html>\n<html lang=en></html>",
			want: "<!DOCTYPE html>\n<html lang=\"en\"></html>",
		},
		{
			name: "lang injected before other attributes",
			in:   "<!DOCTYPE html>\n<html class=\"dark\"></html>",
			want: "<!DOCTYPE html>\n<html lang=\"en\" class=\"dark\"></html>",
		},
		{
			name: "stray lang attribute removed",
			in:   "<!DOCTYPE html>\n<html lang=\"en\"><body><div lang=\"en\">x</div></body></html>",
			want: "<!DOCTYPE html>\n<html lang=\"en\"><body><div>x</div></body></html>",
		},
		{
			name: "lang pseudo tags removed",
			in:   "<!DOCTYPE html>\n<lang=\"en\"><html lang=\"en\"><body>x</body></lang></html>",
			want: "<!DOCTYPE html>\n<html lang=\"en\"><body>x</body></html>",
		},
		{
			name: "doctype carrying lang",
			in:   "<!DOCTYPE html lang=\"en\">\n<html><body></body></html>",
			want: "<!DOCTYPE html>\n<html lang=\"en\"><body></body></html>",
		},
		{
			name: "duplicate doctype collapsed",
			in:   "<!DOCTYPE html>\n<!DOCTYPE html>\n<html lang=\"en\"></html>",
			want: "<!DOCTYPE html>\n<html lang=\"en\"></html>",
		},
		{
			name: "missing closing tag appended",
			in:   "<!DOCTYPE html>\n<html lang=\"en\"><body>x</body>",
			want: "<!DOCTYPE html>\n<html lang=\"en\"><body>x</body>\n</html>",
		},
		{
			name: "removal splices a new lang tag",
			in:   "<html><body>" + strings.Repeat("<la", 5) + "<lang>" + strings.Repeat("ng>", 5) + "x</body></html>",
			want: "<!DOCTYPE html>\n<html lang=\"en\"><body>x</body></html>",
		},
		{
			name: "dangling lang fragment before appended close",
			in:   "<html><body>x<lang",
			want: "<!DOCTYPE html>\n<html lang=\"en\"><body>x\n</html>",
		},
		{
			name: "leading lang attribute text",
			in:   "lang=\"en\"<p>x</p>",
			want: "<!DOCTYPE html>\n<html lang=\"en\">\n<p>x</p>\n</html>",
		},
		{
			name: "empty input",
			in:   "",
			want: "<!DOCTYPE html>\n<html lang=\"en\">\n</html>",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Repair(tt.in))
		})
	}
}

var repairCorpus = []string{
	"",
	"hello",
	"<html><body>hi</body></html>",
	"<!DOCTYPE < lang=\"en\">text",
	"<!doctype HTML>\n<HTML LANG=\"de\"><body></body></HTML>",
	"<!DOCTYPE html lang=\"en\"><html lang=\"en\" lang=\"en\"></html>",
	"<lang><lang lang=\"en\">x</lang>",
	"a <lang>lang=\"en\" b",
	"<html xml:lang=\"en\"><body></body>",
	"<html\n  data-theme=\"dark\"\n>\n<body>\n<script>const s = '<html>';</script>\n</body>\n</html>",
	"<!DOCTYPE html>\n\n\n   <html>",
	"</html>",
	"<!DOCTYPE html><!DOCTYPE html><!doctype html>",
	"<body><p lang=\"en\">x</p></body>",
	"  \n<!DOCTYPE <lang=\"en\" foo>\n<html lang='fr'>x</html>  ",
	"<html><body>" + strings.Repeat("<la", 5) + "<lang>" + strings.Repeat("ng>", 5) + "x</body></html>",
	"<la<!doctype html>ng>x",
	"<!doc<lang>type html><html>",
	"<html><body>x<lang",
	"<p>x</p><!doctype",
	"lang=\"en\"<p>x</p>",
	"<!DOCTYPE html>  \n lang=\"en\" <html>",
	"<!doctype html><!doctype html><html lang=\"en\"></html>",
}

func TestRepairIdempotent(t *testing.T) {
	for _, in := range repairCorpus {
		once := Repair(in)
		assert.Equal(t, once, Repair(once), "input %q", in)
	}
}

var htmlLangTagRe = regexp.MustCompile(`(?i)<html(\s[^>]*)?>`)

func TestRepairStructuralGuarantees(t *testing.T) {
	for _, in := range repairCorpus {
		out := Repair(in)
		lower := strings.ToLower(out)

		require.True(t, strings.HasPrefix(lower, "<!doctype html>"), "input %q", in)
		assert.Equal(t, 1, strings.Count(lower, "<!doctype html>"), "input %q", in)
		assert.Contains(t, lower, "</html>", "input %q", in)

		first := htmlLangTagRe.FindString(out)
		require.NotEmpty(t, first, "input %q", in)
		assert.Contains(t, strings.ToLower(first), `lang="en"`, "input %q", in)

		_, err := Validate(out)
		assert.NoError(t, err, "input %q", in)
	}
}

func TestRepairFuncAdapter(t *testing.T) {
	var r Repairer = RepairFunc(strings.ToUpper)
	assert.Equal(t, "ABC", r.Repair("abc"))
}

func FuzzRepairIdempotent(f *testing.F) {
	for _, in := range repairCorpus {
		f.Add(in)
	}
	f.Fuzz(func(t *testing.T, in string) {
		once := Repair(in)
		if twice := Repair(once); twice != once {
			t.Fatalf("not idempotent for %q:\nonce:  %q\ntwice: %q", in, once, twice)
		}
	})
}
