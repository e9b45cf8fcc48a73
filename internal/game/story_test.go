package game

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeStory(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil { //nolint:gosec // test file permissions are acceptable
		t.Fatalf("Failed to create test story file: %v", err)
	}
	return path
}

func TestLoadStory_Valid(t *testing.T) {
	path := writeStory(t, "story.yaml", `title: "Sword Valley"
variables:
  sect: "Azure Cloud"
chapters:
  - id: start
    title: "Valley Mouth"
    text: "Wind howls through the valley."
    assets:
      bgm: valley
    options:
      - text: "Meditate"
        nextId: peak
        effects:
          cultivation: 5
          spirit: -10
          item: "jade slip"
          met_hermit: true
      - text: "Climb the cliff"
        nextId: peak
        conditions:
          stamina: 50
  - id: peak
    text: "The peak."
`)

	story, err := LoadStory(path)
	if err != nil {
		t.Fatalf("Unexpected error loading story: %v", err)
	}
	if story.Title != "Sword Valley" {
		t.Errorf("Expected title 'Sword Valley', got '%s'", story.Title)
	}
	if story.StartNode().ID != "start" {
		t.Errorf("Expected start chapter 'start', got '%s'", story.StartNode().ID)
	}
	if v, _ := story.Variables.Get(AttrSect); !v.Equal(String("Azure Cloud")) {
		t.Errorf("Expected sect variable, got %v", v)
	}

	node := story.Node("start")
	if node.Assets.BGM != "valley" {
		t.Errorf("Expected bgm 'valley', got '%s'", node.Assets.BGM)
	}
	if len(node.Options) != 2 {
		t.Fatalf("Expected 2 options, got %d", len(node.Options))
	}

	effs := node.Options[0].Effects
	wantOrder := []string{AttrCultivation, AttrSpirit, AttrItem, "met_hermit"}
	if len(effs) != len(wantOrder) {
		t.Fatalf("Expected %d effects, got %d", len(wantOrder), len(effs))
	}
	for i, attr := range wantOrder {
		if effs[i].Attr != attr {
			t.Errorf("Effect %d: expected %s, got %s", i, attr, effs[i].Attr)
		}
	}
	if n, _ := effs[1].Value.Num(); n != -10 {
		t.Errorf("Expected spirit -10, got %v", n)
	}
	if effs[3].Value.Kind() != KindBool {
		t.Errorf("Expected bool effect, got %s", effs[3].Value.Kind())
	}
	if node.Options[1].Conditions[AttrStamina] != 50 {
		t.Errorf("Expected stamina condition 50, got %v", node.Options[1].Conditions)
	}
}

func TestLoadStory_JSON(t *testing.T) {
	path := writeStory(t, "story.json", `{
  "start": "gate",
  "chapters": [
    {"id": "intro", "text": "Before."},
    {"id": "gate", "text": "At the gate.", "options": [
      {"text": "Pass", "nextId": "intro", "effects": {"karma": 2, "sect": "Iron Peak"}}
    ]}
  ]
}`)

	story, err := LoadStory(path)
	if err != nil {
		t.Fatalf("Unexpected error loading story: %v", err)
	}
	if story.StartNode().ID != "gate" {
		t.Errorf("Expected explicit start 'gate', got '%s'", story.StartNode().ID)
	}
	effs := story.Node("gate").Options[0].Effects
	if len(effs) != 2 || effs[0].Attr != AttrKarma || effs[1].Attr != AttrSect {
		t.Errorf("Expected ordered effects karma, sect; got %+v", effs)
	}
}

func TestLoadStory_InvalidFile(t *testing.T) {
	_, err := LoadStory("non_existent_file.yaml")
	if err == nil {
		t.Error("Expected error for non-existent file")
	}
}

func TestLoadStory_InvalidYAML(t *testing.T) {
	path := writeStory(t, "invalid.yaml", `chapters:
  - id: start
    text: [unclosed bracket
`)
	if _, err := LoadStory(path); err == nil {
		t.Error("Expected error for invalid YAML")
	}
}

func TestLoadStory_UnknownValueShapeIsInvalid(t *testing.T) {
	path := writeStory(t, "odd.yaml", `chapters:
  - id: start
    text: "Start"
    options:
      - text: "Odd"
        effects:
          weird: {nested: 1}
          karma: 1
`)
	story, err := LoadStory(path)
	if err != nil {
		t.Fatalf("Unexpected error loading story: %v", err)
	}
	effs := story.Node("start").Options[0].Effects
	if effs[0].Value.Kind() != KindInvalid {
		t.Errorf("Expected invalid kind for mapping value, got %s", effs[0].Value.Kind())
	}
}

func TestLoadStory_NonFiniteNumbersAreInvalid(t *testing.T) {
	path := writeStory(t, "nan.yaml", `variables:
  luck: .nan
  fate: 3
chapters:
  - id: start
    text: "Start"
    options:
      - text: "Endless"
        effects:
          karma: .nan
          cultivation: .inf
          obsession: -.inf
          spirit: 5
`)
	story, err := LoadStory(path)
	if err != nil {
		t.Fatalf("Unexpected error loading story: %v", err)
	}
	effs := story.Node("start").Options[0].Effects
	for _, ef := range effs[:3] {
		if ef.Value.Kind() != KindInvalid {
			t.Errorf("Expected invalid kind for %s, got %s", ef.Attr, ef.Value.Kind())
		}
	}
	if effs[3].Value.Kind() != KindNumber {
		t.Errorf("Expected spirit to stay a number, got %s", effs[3].Value.Kind())
	}
	if _, ok := story.Variables.Get("luck"); ok {
		t.Error("Expected NaN variable to be dropped")
	}
	if got := story.Variables.Num("fate"); got != 3 {
		t.Errorf("Expected fate 3, got %v", got)
	}

	out := Apply(NewStatus(), effs)
	for _, attr := range out.Keys() {
		if n, ok := mustGet(t, out, attr).Num(); ok && (math.IsNaN(n) || n < 0) {
			t.Errorf("Expected %s to be a non-negative number, got %v", attr, n)
		}
	}
	if _, err := json.Marshal(out); err != nil {
		t.Errorf("Expected status to marshal after applying, got %v", err)
	}
}

func TestStatus_UnmarshalJSON_OutOfRangeNumber(t *testing.T) {
	var st Status
	if err := json.Unmarshal([]byte(`{"karma": 1e999, "spirit": 40}`), &st); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, ok := st.Get(AttrKarma); ok {
		t.Error("Expected out-of-range karma to be dropped")
	}
	if got := st.Num(AttrSpirit); got != 40 {
		t.Errorf("Expected spirit 40, got %v", got)
	}
}

func mustGet(t *testing.T, st Status, attr string) Value {
	t.Helper()
	v, ok := st.Get(attr)
	if !ok {
		t.Fatalf("Expected attribute %s", attr)
	}
	return v
}

func TestStartNode_Resolution(t *testing.T) {
	s := NewStory("", "", &Node{ID: "a"}, &Node{ID: "start"})
	if got := s.StartNode().ID; got != "start" {
		t.Errorf("Expected chapter named start, got %s", got)
	}

	s = NewStory("", "", &Node{ID: "a"}, &Node{ID: "b"})
	if got := s.StartNode().ID; got != "a" {
		t.Errorf("Expected first chapter, got %s", got)
	}

	s = NewStory("", "b", &Node{ID: "start"}, &Node{ID: "b"})
	if got := s.StartNode().ID; got != "b" {
		t.Errorf("Expected explicit start, got %s", got)
	}

	s = NewStory("", "missing", &Node{ID: "start"})
	if s.StartNode() != nil {
		t.Error("Expected unresolvable explicit start to be nil")
	}
}

func TestValidate(t *testing.T) {
	s := NewStory("", "",
		&Node{ID: "start", Options: []Option{
			{Text: "lost", NextID: "nowhere"},
			{Text: "fight", Battle: "dragon"},
		}},
		&Node{ID: "start"},
		&Node{ID: "arena", Battle: &Battle{EnemyID: "bandit", OnVictory: "start"}},
	)

	err := s.Validate(func(id string) bool { return id == "bandit" })
	if err == nil {
		t.Fatal("Expected validation errors")
	}
	msg := err.Error()
	for _, want := range []string{
		`unknown chapter "nowhere"`,
		`duplicate chapter id "start"`,
		`unknown enemy "dragon"`,
		"has no battle branches",
		"victory and defeat targets are required",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("Expected error to mention %q, got:\n%s", want, msg)
		}
	}
}

func TestValidate_Clean(t *testing.T) {
	if err := testStory().Validate(func(id string) bool { return id == "bandit" }); err != nil {
		t.Errorf("Expected test story to validate, got %v", err)
	}
	if err := NewStory("", "").Validate(nil); err == nil {
		t.Error("Expected empty story to fail validation")
	}
}
