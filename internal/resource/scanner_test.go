package resource

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestScan_SingleKeyword(t *testing.T) {
	text := `*** Settings ***
Library    Collections

*** Keywords ***
the user logs in as "${username}"
    [Documentation]    Logs the user in via the login form.
    [Arguments]    ${username}
    [Tags]    auth    smoke
    Log    ${username}
`
	defs := Scan("/proj/steps/auth.resource", text)
	if len(defs) != 1 {
		t.Fatalf("got %d definitions, want 1", len(defs))
	}

	d := defs[0]
	if d.Name != `the user logs in as "${username}"` {
		t.Errorf("Name = %q", d.Name)
	}
	if d.File != "/proj/steps/auth.resource" {
		t.Errorf("File = %q", d.File)
	}
	if d.Line != 4 {
		t.Errorf("Line = %d, want 4", d.Line)
	}
	if d.Doc != "Logs the user in via the login form." {
		t.Errorf("Doc = %q", d.Doc)
	}
	if diff := cmp.Diff([]string{"${username}"}, d.Args); diff != "" {
		t.Errorf("Args mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"auth", "smoke"}, d.Tags); diff != "" {
		t.Errorf("Tags mismatch (-want +got):\n%s", diff)
	}
	if !d.HasVariables() {
		t.Error("HasVariables() = false, want true")
	}
}

func TestScan_MultipleKeywords(t *testing.T) {
	text := `*** Keywords ***
the cart is empty
    Should Be Empty    ${cart}

I press add
    Click Button    add
`
	defs := Scan("calc.resource", text)
	if len(defs) != 2 {
		t.Fatalf("got %d definitions, want 2", len(defs))
	}
	if defs[0].Name != "the cart is empty" || defs[0].Line != 1 {
		t.Errorf("defs[0] = %q at line %d", defs[0].Name, defs[0].Line)
	}
	if defs[1].Name != "I press add" || defs[1].Line != 4 {
		t.Errorf("defs[1] = %q at line %d", defs[1].Name, defs[1].Line)
	}
}

func TestScan_SectionBoundaries(t *testing.T) {
	text := `*** Test Cases ***
Not A Keyword
    Log    hi

*** keywords ***
inside section
    Log    hi

*** Variables ***
${NOT_A_KEYWORD}    1
`
	defs := Scan("f.robot", text)
	if len(defs) != 1 {
		t.Fatalf("got %d definitions, want 1", len(defs))
	}
	if defs[0].Name != "inside section" {
		t.Errorf("Name = %q", defs[0].Name)
	}
}

func TestScan_SectionHeaderSpacing(t *testing.T) {
	for _, header := range []string{"***Keywords***", "***  Keywords  ***", "*** KEYWORDS ***"} {
		defs := Scan("f.resource", header+"\nkw\n")
		if len(defs) != 1 {
			t.Errorf("header %q: got %d definitions, want 1", header, len(defs))
		}
	}
}

func TestScan_UnterminatedKeywordCommitted(t *testing.T) {
	// The section ends at end of file while a keyword body is still open.
	text := "*** Keywords ***\nthe last keyword\n    [Documentation]    still recorded\n    [Tags]    tail"
	defs := Scan("f.resource", text)
	if len(defs) != 1 {
		t.Fatalf("got %d definitions, want 1", len(defs))
	}
	if defs[0].Doc != "still recorded" {
		t.Errorf("Doc = %q", defs[0].Doc)
	}
	if len(defs[0].Tags) != 1 || defs[0].Tags[0] != "tail" {
		t.Errorf("Tags = %v", defs[0].Tags)
	}
}

func TestScan_RepeatedDocumentationLastWins(t *testing.T) {
	text := `*** Keywords ***
kw
    [Documentation]    first
    [Documentation]    second
`
	defs := Scan("f.resource", text)
	if len(defs) != 1 {
		t.Fatalf("got %d definitions, want 1", len(defs))
	}
	if defs[0].Doc != "second" {
		t.Errorf("Doc = %q, want %q", defs[0].Doc, "second")
	}
}

func TestScan_SkipsCommentAndBracketLines(t *testing.T) {
	text := `*** Keywords ***
# a comment at section level
[Template]    stray setting
real keyword
    Log    hi
`
	defs := Scan("f.resource", text)
	if len(defs) != 1 {
		t.Fatalf("got %d definitions, want 1", len(defs))
	}
	if defs[0].Name != "real keyword" {
		t.Errorf("Name = %q", defs[0].Name)
	}
}

func TestScan_TabIndentedBody(t *testing.T) {
	text := "*** Keywords ***\nkw\n\t[Arguments]    ${a}    ${b}\n"
	defs := Scan("f.resource", text)
	if len(defs) != 1 {
		t.Fatalf("got %d definitions, want 1", len(defs))
	}
	if diff := cmp.Diff([]string{"${a}", "${b}"}, defs[0].Args); diff != "" {
		t.Errorf("Args mismatch (-want +got):\n%s", diff)
	}
}

func TestScan_SettingsAreCaseSensitive(t *testing.T) {
	text := `*** Keywords ***
kw
    [documentation]    lowercase is not the canonical capitalization
`
	defs := Scan("f.resource", text)
	if len(defs) != 1 {
		t.Fatalf("got %d definitions, want 1", len(defs))
	}
	if defs[0].Doc != "" {
		t.Errorf("Doc = %q, want empty for non-canonical setting name", defs[0].Doc)
	}
}

func TestScan_MalformedInput(t *testing.T) {
	inputs := []string{
		"",
		"no sections at all\njust text\n",
		"*** Keywords ***",
		"*** Keywords ***\n",
		"****\nkw\n",
		"\x00\x01garbage\xff",
	}
	for _, in := range inputs {
		// Must never panic; empty or partial output is fine.
		_ = Scan("f.resource", in)
	}
}

func TestScan_CRLFLineEndings(t *testing.T) {
	text := "*** Keywords ***\r\nthe cart is empty\r\n    Log    hi\r\n"
	defs := Scan("f.resource", text)
	if len(defs) != 1 {
		t.Fatalf("got %d definitions, want 1", len(defs))
	}
	if defs[0].Name != "the cart is empty" {
		t.Errorf("Name = %q", defs[0].Name)
	}
}
