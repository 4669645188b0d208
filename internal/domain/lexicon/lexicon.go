// Package lexicon holds the static vocabulary used to evaluate interview
// answers: role keywords and synonym groups, question banks, stopwords,
// filler words, STAR cues and off-topic markers.
//
// The data ships embedded in the binary and is decoded once on first use.
// Everything returned from this package is a copy; the loaded tables are
// never mutated after decoding.
package lexicon

import (
	"embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed data/*.yaml
var dataFS embed.FS

// Phrase is a vocabulary entry together with its normalized tokens.
type Phrase struct {
	Text   string
	Tokens []string
}

// NewPhrase normalizes text into a Phrase.
func NewPhrase(text string) Phrase {
	return Phrase{Text: text, Tokens: Words(text)}
}

// Question is one entry of a role's question bank.
type Question struct {
	ID   string `json:"id" yaml:"id"`
	Text string `json:"text" yaml:"text"`
}

// StarCues lists the cue phrases for each STAR component.
type StarCues struct {
	Situation []Phrase
	Task      []Phrase
	Action    []Phrase
	Result    []Phrase
}

// Lexicon is the immutable vocabulary of one role.
type Lexicon struct {
	role      Role
	label     string
	skill     string
	keywords  []Phrase
	synonyms  [][]string
	synIndex  map[string][]int
	questions []Question
}

type sharedDoc struct {
	Stopwords       []string `yaml:"stopwords"`
	Fillers         []string `yaml:"fillers"`
	OffTopic        []string `yaml:"off_topic"`
	UnrelatedTopics []string `yaml:"unrelated_topics"`
	Vague           []string `yaml:"vague"`
	Star            struct {
		Situation []string `yaml:"situation"`
		Task      []string `yaml:"task"`
		Action    []string `yaml:"action"`
		Result    []string `yaml:"result"`
	} `yaml:"star"`
}

type rolesDoc struct {
	Roles []struct {
		ID        string     `yaml:"id"`
		Label     string     `yaml:"label"`
		Skill     string     `yaml:"skill"`
		Keywords  []string   `yaml:"keywords"`
		Synonyms  [][]string `yaml:"synonyms"`
		Questions []Question `yaml:"questions"`
	} `yaml:"roles"`
}

type tables struct {
	stopwords map[string]struct{}
	fillers   []Phrase
	offTopic  []Phrase
	unrelated []Phrase
	vague     []Phrase
	star      StarCues
	roles     map[Role]*Lexicon
}

var (
	loadOnce sync.Once
	loaded   *tables
)

func data() *tables {
	loadOnce.Do(func() {
		t, err := decode()
		if err != nil {
			panic(fmt.Sprintf("lexicon: %v", err))
		}
		loaded = t
	})
	return loaded
}

func decode() (*tables, error) {
	var shared sharedDoc
	if err := decodeFile("data/shared.yaml", &shared); err != nil {
		return nil, err
	}
	var roles rolesDoc
	if err := decodeFile("data/roles.yaml", &roles); err != nil {
		return nil, err
	}

	t := &tables{
		stopwords: make(map[string]struct{}, len(shared.Stopwords)),
		fillers:   phrases(shared.Fillers),
		offTopic:  phrases(shared.OffTopic),
		unrelated: phrases(shared.UnrelatedTopics),
		vague:     phrases(shared.Vague),
		star: StarCues{
			Situation: phrases(shared.Star.Situation),
			Task:      phrases(shared.Star.Task),
			Action:    phrases(shared.Star.Action),
			Result:    phrases(shared.Star.Result),
		},
		roles: make(map[Role]*Lexicon, len(roles.Roles)),
	}
	for _, w := range shared.Stopwords {
		t.stopwords[Normalize(w)] = struct{}{}
	}

	for _, doc := range roles.Roles {
		role := Role(doc.ID)
		if !role.Valid() {
			return nil, fmt.Errorf("roles.yaml: %w: %q", ErrUnsupportedRole, doc.ID)
		}
		lx := &Lexicon{
			role:      role,
			label:     doc.Label,
			skill:     doc.Skill,
			keywords:  phrases(doc.Keywords),
			synIndex:  make(map[string][]int),
			questions: append([]Question(nil), doc.Questions...),
		}
		for gi, group := range doc.Synonyms {
			terms := make([]string, 0, len(group))
			for _, term := range group {
				w := Normalize(term)
				terms = append(terms, w)
				lx.synIndex[w] = append(lx.synIndex[w], gi)
			}
			lx.synonyms = append(lx.synonyms, terms)
		}
		t.roles[role] = lx
	}
	for _, r := range allRoles {
		if _, ok := t.roles[r]; !ok {
			return nil, fmt.Errorf("roles.yaml: no lexicon for %q", r)
		}
	}
	return t, nil
}

func decodeFile(name string, into any) error {
	raw, err := dataFS.ReadFile(name)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := yaml.Unmarshal(raw, into); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

func phrases(texts []string) []Phrase {
	out := make([]Phrase, 0, len(texts))
	for _, s := range texts {
		if p := NewPhrase(s); len(p.Tokens) > 0 {
			out = append(out, p)
		}
	}
	return out
}

func clonePhrases(in []Phrase) []Phrase {
	out := make([]Phrase, len(in))
	for i, p := range in {
		out[i] = Phrase{Text: p.Text, Tokens: append([]string(nil), p.Tokens...)}
	}
	return out
}

// For returns the lexicon of role.
func For(role Role) (*Lexicon, error) {
	lx, ok := data().roles[role]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedRole, string(role))
	}
	return lx, nil
}

// IsStopword reports whether the normalized word w is a stopword.
func IsStopword(w string) bool {
	_, ok := data().stopwords[w]
	return ok
}

// Fillers returns the filler vocabulary in its canonical order.
func Fillers() []Phrase { return clonePhrases(data().fillers) }

// OffTopicPhrases returns phrases that signal a non-answer.
func OffTopicPhrases() []Phrase { return clonePhrases(data().offTopic) }

// UnrelatedTopics returns nouns for subjects unrelated to any interview.
func UnrelatedTopics() []Phrase { return clonePhrases(data().unrelated) }

// VaguePhrases returns hedging phrases that carry no content.
func VaguePhrases() []Phrase { return clonePhrases(data().vague) }

// Star returns the STAR cue lists.
func Star() StarCues {
	s := data().star
	return StarCues{
		Situation: clonePhrases(s.Situation),
		Task:      clonePhrases(s.Task),
		Action:    clonePhrases(s.Action),
		Result:    clonePhrases(s.Result),
	}
}

// Role returns the role this lexicon describes.
func (l *Lexicon) Role() Role { return l.role }

// Label returns the human readable role title.
func (l *Lexicon) Label() string { return l.label }

// Skill returns the primary skill assessed for the role.
func (l *Lexicon) Skill() string { return l.skill }

// Keywords returns the role keywords ordered by importance.
func (l *Lexicon) Keywords() []Phrase { return clonePhrases(l.keywords) }

// TopKeywords returns at most n leading keywords.
func (l *Lexicon) TopKeywords(n int) []Phrase {
	if n > len(l.keywords) {
		n = len(l.keywords)
	}
	if n < 0 {
		n = 0
	}
	return clonePhrases(l.keywords[:n])
}

// Related returns every term sharing a synonym group with the normalized
// word w, excluding w itself.
func (l *Lexicon) Related(w string) []string {
	var out []string
	for _, gi := range l.synIndex[w] {
		for _, term := range l.synonyms[gi] {
			if term != w {
				out = append(out, term)
			}
		}
	}
	return out
}

// Questions returns the role's question bank.
func (l *Lexicon) Questions() []Question {
	return append([]Question(nil), l.questions...)
}

// Question looks up a bank question by id.
func (l *Lexicon) Question(id string) (Question, bool) {
	for _, q := range l.questions {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}

// QuestionKeywords extracts the distinct content words of a question:
// longer than three characters and not a stopword, in order of appearance.
func QuestionKeywords(question string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, w := range Words(question) {
		if len([]rune(w)) <= minTokenLen || IsStopword(w) {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return out
}
