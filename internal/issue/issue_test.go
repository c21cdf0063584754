// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"
	"testing"
)

func TestId_Constants(t *testing.T) {
	ids := []Id{
		FileNotFoundId,
		NotSignedInId,
		AliasNotOwnedId,
		AliasNotFoundId,
		ConfigLoadFailedId,
		RegistryUnreachableId,
		ReleaseRejectedId,
		InvalidVersionId,
	}

	seen := make(map[Id]bool)
	for _, id := range ids {
		if seen[id] {
			t.Errorf("duplicate ID: %d", id)
		}
		seen[id] = true
		if Get(id) == nil {
			t.Errorf("Get(%d) returned nil; every id needs a catalog entry", id)
		}
	}

	if FileNotFoundId != 1 {
		t.Errorf("FileNotFoundId = %d, want 1", FileNotFoundId)
	}
}

func TestGet(t *testing.T) {
	tests := []struct {
		id       Id
		wantNil  bool
		contains string
	}{
		{FileNotFoundId, false, "File not found"},
		{NotSignedInId, false, "not signed in"},
		{AliasNotOwnedId, false, "crux alias request"},
		{AliasNotFoundId, false, "Alias not found"},
		{ConfigLoadFailedId, false, "Failed to load configuration"},
		{RegistryUnreachableId, false, "Could not reach the registry"},
		{ReleaseRejectedId, false, "rejected the release"},
		{InvalidVersionId, false, "semantic versioning"},
		{Id(9999), true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.contains, func(t *testing.T) {
			issue := Get(tt.id)
			if tt.wantNil {
				if issue != nil {
					t.Errorf("Get(%d) should return nil", tt.id)
				}
				return
			}
			if issue == nil {
				t.Fatalf("Get(%d) returned nil", tt.id)
			}
			if issue.Id() != tt.id {
				t.Errorf("Id() = %d, want %d", issue.Id(), tt.id)
			}
			if !strings.Contains(string(issue.MarkdownMsg()), tt.contains) {
				t.Errorf("Get(%d).MarkdownMsg() should contain %q", tt.id, tt.contains)
			}
		})
	}
}

func TestIssue_LinksAreCloned(t *testing.T) {
	issue := Get(NotSignedInId)
	links := issue.DocLinks()
	if len(links) == 0 {
		t.Fatal("expected doc links")
	}
	links[0] = "modified"
	if issue.DocLinks()[0] == "modified" {
		t.Error("DocLinks() should return a clone")
	}

	ext := Get(InvalidVersionId).ExtLinks()
	if len(ext) == 0 {
		t.Fatal("expected ext links")
	}
	ext[0] = "modified"
	if Get(InvalidVersionId).ExtLinks()[0] == "modified" {
		t.Error("ExtLinks() should return a clone")
	}
}

func TestIssue_Render(t *testing.T) {
	originalRender := render
	defer func() { render = originalRender }()

	render = func(in string, _ string) (string, error) {
		return in, nil
	}

	rendered, err := Get(InvalidVersionId).Render("notty")
	if err != nil {
		t.Fatalf("Render() returned error: %v", err)
	}
	if !strings.Contains(rendered, "Invalid version") {
		t.Error("Render() output should contain the issue body")
	}
	if !strings.Contains(rendered, "See also") || !strings.Contains(rendered, "https://semver.org") {
		t.Errorf("Render() output should list links, got:\n%s", rendered)
	}
}

func TestIssue_RenderGlamour(t *testing.T) {
	rendered, err := Get(FileNotFoundId).Render("notty")
	if err != nil {
		t.Fatalf("Render() returned error: %v", err)
	}
	if !strings.Contains(rendered, "File not found") {
		t.Errorf("rendered output missing heading:\n%s", rendered)
	}
}

func TestValues(t *testing.T) {
	issues := Values()
	if len(issues) != len(issuesByIDForTest()) {
		t.Fatalf("Values() returned %d issues, want %d", len(issues), len(issuesByIDForTest()))
	}
	for i := 1; i < len(issues); i++ {
		if issues[i-1].Id() >= issues[i].Id() {
			t.Errorf("Values() not ordered by id at %d", i)
		}
	}
}

func issuesByIDForTest() map[Id]*Issue {
	return issues
}
