package classifier

import (
	"kanakey/internal/deadkey"
	"kanakey/internal/diacritic"
	"kanakey/internal/intent"
	"kanakey/internal/keyevent"
)

// Decision is a classified event together with how it was reached.
type Decision struct {
	Intent intent.Intent

	// Rule is the name of the matching rule, or "dead-key" when a pending
	// mark combined with the event.
	Rule string

	// DeadKey is the composer outcome for this event.
	DeadKey deadkey.Outcome
}

// Classifier applies the rule list and owns the dead-key composer.
type Classifier struct {
	composer deadkey.Composer
}

// New creates an idle classifier.
func New() *Classifier {
	return &Classifier{}
}

// Classify returns the intent for ev.
func (c *Classifier) Classify(ev keyevent.Event) intent.Intent {
	return c.Decide(ev).Intent
}

// Decide classifies ev and reports the rule that produced the intent.
func (c *Classifier) Decide(ev keyevent.Event) Decision {
	res := c.composer.Feed(ev.Characters, ev.Modifiers)
	if res.Outcome == deadkey.Composed {
		return Decision{
			Intent:  intent.NewLiteral(res.Text),
			Rule:    "dead-key",
			DeadKey: res.Outcome,
		}
	}

	in, rule := Evaluate(ev)
	if in.Kind == intent.BeginDeadKey {
		c.composer.Begin(in.Mark)
	}
	if res.Outcome == deadkey.Missed {
		in = withMark(in, res.Mark)
	}
	return Decision{Intent: in, Rule: rule, DeadKey: res.Outcome}
}

// Pending returns the mark waiting for a base character.
func (c *Classifier) Pending() (diacritic.Mark, bool) {
	return c.composer.Pending()
}

// Flush disarms the composer. If a mark was pending it is returned as
// literal input so the keystroke is not lost.
func (c *Classifier) Flush() (intent.Intent, bool) {
	m, ok := c.composer.Flush()
	if !ok {
		return intent.Intent{}, false
	}
	return intent.NewLiteral(m.String()), true
}

// Reset discards any pending mark.
func (c *Classifier) Reset() {
	c.composer.Reset()
}

// Evaluate runs the rule list without consulting or arming a composer.
func Evaluate(ev keyevent.Event) (intent.Intent, string) {
	for _, r := range rules {
		if r.Match(ev) {
			return r.Produce(ev), r.Name
		}
	}
	// unreachable: the default rule matches every event
	return intent.NewUnrecognized(), "default"
}

// Rules returns the rule list in priority order.
func Rules() []Rule {
	out := make([]Rule, len(rules))
	copy(out, rules)
	return out
}

// withMark attaches a mark that failed to combine. Literal input absorbs it
// as leading text, so the mark and the base arrive in one literal-input
// emission (` then y gives literal-input("`y")) rather than two. Any other
// intent carries it as a prefix, applied before the intent itself.
func withMark(in intent.Intent, m diacritic.Mark) intent.Intent {
	mark := m.String()
	if in.Kind == intent.LiteralInput {
		in.Text = mark + in.Text
		return in
	}
	return in.WithPrefix(mark + in.Prefix)
}
