package diagnostics

import (
	"fmt"
	"math"

	"github.com/aretw0/quizgraph/pkg/domain"
	"github.com/aretw0/quizgraph/pkg/socket"
)

// Severity ranks a finding.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
	SeverityInfo    Severity = "info"
)

// Rule names, in evaluation order.
const (
	RuleSkeleton     = "skeleton"
	RuleLeadCapture  = "lead_capture"
	RuleConnectivity = "connectivity"
	RuleScoring      = "scoring"
	RuleIntegrations = "integrations"
	RuleSockets      = "sockets"
)

// Finding is one validator result.
type Finding struct {
	Rule        string   `json:"rule"`
	Severity    Severity `json:"severity"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
}

// Report is the validator output.
type Report struct {
	Findings    []Finding `json:"findings"`
	HealthScore int       `json:"healthScore"`
}

// HasErrors reports whether any finding is an error.
func (r Report) HasErrors() bool {
	return r.Count(SeverityError) > 0
}

// Count returns the number of findings with the given severity.
func (r Report) Count(s Severity) int {
	n := 0
	for _, f := range r.Findings {
		if f.Severity == s {
			n++
		}
	}
	return n
}

// Option configures Validate.
type Option func(*config)

type config struct {
	sockets bool
}

// WithSocketCheck adds a final rule that reports edges bound to sockets their
// source node no longer exposes. It is off by default, so the health score
// only reflects the five structural rules.
func WithSocketCheck() Option {
	return func(c *config) { c.sockets = true }
}

// Validate runs every rule over g.
func Validate(g domain.QuizGraph, opts ...Option) Report {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	var findings []Finding
	findings = append(findings, skeleton(g))
	findings = append(findings, leadCapture(g))
	if f, ok := connectivity(g); ok {
		findings = append(findings, f)
	}
	if f, ok := scoring(g); ok {
		findings = append(findings, f)
	}
	findings = append(findings, integrations())
	if cfg.sockets {
		findings = append(findings, sockets(g))
	}

	return Report{Findings: findings, HealthScore: healthScore(findings)}
}

func healthScore(findings []Finding) int {
	if len(findings) == 0 {
		return 0
	}
	success := 0
	for _, f := range findings {
		if f.Severity == SeveritySuccess {
			success++
		}
	}
	return int(math.Round(100 * float64(success) / float64(len(findings))))
}

func hasElement(g domain.QuizGraph, match func(domain.Element) bool) bool {
	found := false
	g.Elements(func(_ *domain.Node, el *domain.Element) bool {
		if match(*el) {
			found = true
			return false
		}
		return true
	})
	return found
}

func skeleton(g domain.QuizGraph) Finding {
	hasStart := len(g.NodesOfKind(domain.KindStart)) > 0
	hasResult := len(g.NodesOfKind(domain.KindResult)) > 0
	hasQuestion := hasElement(g, domain.Element.IsInteractive)

	if hasStart && hasResult && hasQuestion {
		return Finding{
			Rule:        RuleSkeleton,
			Severity:    SeveritySuccess,
			Title:       "Quiz structure complete",
			Description: "The quiz has a start, at least one question and a result.",
		}
	}

	var missing []string
	if !hasStart {
		missing = append(missing, "a start node")
	}
	if !hasQuestion {
		missing = append(missing, "a question")
	}
	if !hasResult {
		missing = append(missing, "a result node")
	}
	return Finding{
		Rule:        RuleSkeleton,
		Severity:    SeverityError,
		Title:       "Quiz structure incomplete",
		Description: "The quiz is missing " + joinAnd(missing) + ".",
	}
}

func leadCapture(g domain.QuizGraph) Finding {
	if hasElement(g, domain.Element.IsLeadCapture) {
		return Finding{
			Rule:        RuleLeadCapture,
			Severity:    SeveritySuccess,
			Title:       "Lead capture configured",
			Description: "Respondents can leave their contact details.",
		}
	}
	return Finding{
		Rule:        RuleLeadCapture,
		Severity:    SeverityWarning,
		Title:       "No lead capture",
		Description: "Add a lead capture element to collect respondent contacts.",
	}
}

// connectivity reports orphans: non-start nodes that no edge targets.
// Graphs with at most one node produce no finding.
func connectivity(g domain.QuizGraph) (Finding, bool) {
	if len(g.Nodes) <= 1 {
		return Finding{}, false
	}
	targeted := make(map[string]bool, len(g.Edges))
	for _, e := range g.Edges {
		targeted[e.Target] = true
	}
	orphans := 0
	for _, n := range g.Nodes {
		if n.Kind != domain.KindStart && !targeted[n.ID] {
			orphans++
		}
	}
	if orphans == 0 {
		return Finding{
			Rule:        RuleConnectivity,
			Severity:    SeveritySuccess,
			Title:       "All nodes connected",
			Description: "Every node can be reached through at least one connection.",
		}, true
	}
	noun := "nodes have"
	if orphans == 1 {
		noun = "node has"
	}
	return Finding{
		Rule:        RuleConnectivity,
		Severity:    SeverityError,
		Title:       "Disconnected nodes",
		Description: fmt.Sprintf("%d %s no incoming connection.", orphans, noun),
	}, true
}

// scoring produces no finding when the graph has nothing that scores.
func scoring(g domain.QuizGraph) (Finding, bool) {
	var scored, zero int
	g.Elements(func(_ *domain.Node, el *domain.Element) bool {
		if !el.IsScoring() {
			return true
		}
		scored++
		if el.AllScoresZero() {
			zero++
		}
		return true
	})
	switch {
	case scored == 0:
		return Finding{}, false
	case zero > 0:
		return Finding{
			Rule:        RuleScoring,
			Severity:    SeverityWarning,
			Title:       "Unscored questions",
			Description: fmt.Sprintf("%d of %d scoring questions award 0 points for every answer.", zero, scored),
		}, true
	}
	return Finding{
		Rule:        RuleScoring,
		Severity:    SeveritySuccess,
		Title:       "Scoring configured",
		Description: "Every scoring question awards points.",
	}, true
}

func integrations() Finding {
	return Finding{
		Rule:        RuleIntegrations,
		Severity:    SeverityInfo,
		Title:       "Integrations",
		Description: "Remember to configure webhooks or CRM integrations to receive leads.",
	}
}

func sockets(g domain.QuizGraph) Finding {
	broken := len(socket.Dangling(g)) + len(g.MissingEndpoints())
	if broken == 0 {
		return Finding{
			Rule:        RuleSockets,
			Severity:    SeveritySuccess,
			Title:       "Connections intact",
			Description: "Every connection starts from an existing answer socket.",
		}
	}
	return Finding{
		Rule:        RuleSockets,
		Severity:    SeverityWarning,
		Title:       "Broken connections",
		Description: fmt.Sprintf("%d connections point from removed answers or nodes; reconnect them.", broken),
	}
}

func joinAnd(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	case 2:
		return items[0] + " and " + items[1]
	}
	out := ""
	for i, it := range items {
		switch {
		case i == len(items)-1:
			out += ", and " + it
		case i > 0:
			out += ", " + it
		default:
			out += it
		}
	}
	return out
}
