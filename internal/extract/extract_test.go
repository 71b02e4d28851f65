package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scan-io-git/scanio-ai/internal/findings"
)

func TestExtractVerdictLastDelimitedSpanWins(t *testing.T) {
	text := `Let me think. <output>{"result":"false_positive","explanation":"a"}</output>
	On reflection the input is reachable.
	<output>{"result":"true_positive","explanation":"b"}</output>`

	got := Extract(text, Verdict, Options{Tag: "output"})
	require.True(t, got.Valid)
	assert.Equal(t, findings.TruePositive, got.Value.Result)
	assert.Equal(t, "b", got.Value.Explanation)
}

func TestExtractScanFirstCandidateWinsWithoutDelimiters(t *testing.T) {
	text := `{"issues":[],"metadata":{"filePath":"x"}} {"issues":[1],"metadata":{"filePath":"y"}}`

	got := Extract(text, ScanReport, Options{})
	require.True(t, got.Valid)
	assert.Equal(t, "x", got.Value.Entry.Metadata.FilePath)
	assert.Empty(t, got.Value.Entry.Issues)
	assert.NotNil(t, got.Value.Entry.Issues)
}

func TestExtractProseYieldsNoCandidate(t *testing.T) {
	inputs := []string{
		"",
		"I could not analyse this file, sorry.",
		"{not json at all}",
		"{{{{ unbalanced",
		"}}}} {",
		`<output>no json here</output>`,
	}
	for _, in := range inputs {
		assert.False(t, Extract(in, ScanReport, Options{}).Valid, "scan input %q", in)
		assert.False(t, Extract(in, Verdict, Options{Tag: "output"}).Valid, "verdict input %q", in)
	}
}

func TestExtractScanReportWrapperForm(t *testing.T) {
	text := "Here is the report:\n```json\n" + `{
  "abc123": {
    "issues": [
      {"vulnerability": "XSS", "explanation": "unescaped {html}", "code": "res.send(q)", "recommendation": "escape"}
    ],
    "metadata": {"filePath": "src/app.ts", "analysisDate": "2024-05-01T00:00:00Z"}
  }
}` + "\n```\nLet me know if you need more."

	got := Extract(text, ScanReport, Options{})
	require.True(t, got.Valid)
	assert.Equal(t, "abc123", got.Value.Key)
	require.Len(t, got.Value.Entry.Issues, 1)
	assert.Equal(t, "XSS", got.Value.Entry.Issues[0].Vulnerability)
	assert.Equal(t, "unescaped {html}", got.Value.Entry.Issues[0].Explanation)
	assert.Equal(t, "src/app.ts", got.Value.Entry.Metadata.FilePath)
}

func TestExtractSkipsNonMatchingCandidates(t *testing.T) {
	text := `Draft: {"note": "thinking"} then {"result": "maybe", "explanation": "?"}
	final: {"result": "false_positive", "explanation": "sanitised upstream"}`

	got := Extract(text, Verdict, Options{Tag: "output"})
	require.True(t, got.Valid, "no delimiters present, falls back to scanning the whole text")
	assert.Equal(t, findings.FalsePositive, got.Value.Result)
}

func TestExtractDelimitedLastSpanIsAuthoritative(t *testing.T) {
	text := `<output>{"result":"true_positive","explanation":"a"}</output> <output>garbage</output>`

	got := Extract(text, Verdict, Options{Tag: "output"})
	assert.False(t, got.Valid)
}

func TestExtractVerdictFields(t *testing.T) {
	text := `<output>
{"result":"true_positive","explanation":"reachable","severity":"Exploitable","exploitation_scenarios":["POST /api/run with payload", 7]}
</output>`

	got := Extract(text, Verdict, Options{Tag: "output"})
	require.True(t, got.Valid)
	require.NotNil(t, got.Value.Severity)
	assert.Equal(t, findings.SeverityExploitable, *got.Value.Severity)
	assert.Equal(t, []string{"POST /api/run with payload", "7"}, got.Value.ExploitationScenarios)

	nulls := Extract(`{"result":"false_positive","explanation":"x","severity":null,"exploitation_scenarios":null}`, Verdict, Options{})
	require.True(t, nulls.Valid)
	assert.Nil(t, nulls.Value.Severity)
	assert.Nil(t, nulls.Value.ExploitationScenarios)
}

func TestVerdictRequiresExplanation(t *testing.T) {
	assert.False(t, Extract(`{"result":"true_positive"}`, Verdict, Options{}).Valid)
}

func TestCandidatesFindsNestedObjectInBrokenText(t *testing.T) {
	text := `{ "draft": oops {"a": "}"} trailing`
	got := Candidates(text)
	require.Len(t, got, 1)
	assert.JSONEq(t, `{"a": "}"}`, string(got[0]))
}

func TestDelimited(t *testing.T) {
	spans := Delimited("<output> one </output>\n<output>\ntwo\n</output>", "output")
	assert.Equal(t, []string{"one", "two"}, spans)
	assert.Empty(t, Delimited("nothing", "output"))
}
