package access

import (
	"context"
	"time"

	"github.com/Manoj-Murari/Our-Kandukur-StartUp/internal/model"
	"github.com/Manoj-Murari/Our-Kandukur-StartUp/internal/ranking"
)

// Outcome is the result of gating the "apply" action.
type Outcome string

const (
	OutcomeAllow          Outcome = "allow"
	OutcomeDenyClosed     Outcome = "deny_closed"
	OutcomeDenySignIn     Outcome = "deny_sign_in"
	OutcomeDenyIncomplete Outcome = "deny_incomplete"
)

// Decision says whether an apply attempt may proceed and what remedial step
// to present when it may not.
type Decision struct {
	Outcome Outcome  `json:"outcome"`
	View    View     `json:"navigate,omitempty"`
	Link    string   `json:"link,omitempty"`
	Missing []string `json:"missing,omitempty"`
}

// Allowed reports whether the decision lets the action proceed.
func (d Decision) Allowed() bool { return d.Outcome == OutcomeAllow }

// DecideApply applies the apply-gating table:
//
//	opportunity effectively closed → deny, nothing else happens
//	anonymous                      → deny, ask the user to sign in
//	signed in, profile incomplete  → deny, send the user to their profile
//	signed in, profile complete    → allow, open the opportunity's link
//
// Closedness is checked first so a closed listing never prompts a sign-in.
func DecideApply(s *Session, o *model.Opportunity, today time.Time) Decision {
	if ranking.IsEffectivelyClosed(o, today) {
		return Decision{Outcome: OutcomeDenyClosed}
	}

	if s == nil {
		s = Anonymous()
	}

	switch s.State {
	case StateComplete:
		return Decision{Outcome: OutcomeAllow, Link: o.Link}
	case StateIncomplete:
		return Decision{Outcome: OutcomeDenyIncomplete, View: ViewProfile, Missing: MissingProfileFields(s.Profile)}
	default:
		return Decision{Outcome: OutcomeDenySignIn}
	}
}

// Navigator switches the current view.
type Navigator interface {
	Navigate(ctx context.Context, view View)
}

// SignInTrigger starts the identity provider's sign-in flow.
type SignInTrigger interface {
	RequestSignIn(ctx context.Context)
}

// LinkOpener opens an external link for the user.
type LinkOpener interface {
	OpenLink(ctx context.Context, url string)
}

// Router carries out gating decisions by calling exactly one collaborator
// (or none, for a closed listing).
type Router struct {
	Navigator Navigator
	SignIn    SignInTrigger
	Opener    LinkOpener
}

// Apply decides and then acts on the decision.
func (r Router) Apply(ctx context.Context, s *Session, o *model.Opportunity, today time.Time) Decision {
	d := DecideApply(s, o, today)
	r.Execute(ctx, d)
	return d
}

// Execute invokes the collaborator a decision names.
func (r Router) Execute(ctx context.Context, d Decision) {
	switch d.Outcome {
	case OutcomeAllow:
		if r.Opener != nil && d.Link != "" && d.Link != model.DefaultLink {
			r.Opener.OpenLink(ctx, d.Link)
		}
	case OutcomeDenyIncomplete:
		if r.Navigator != nil {
			r.Navigator.Navigate(ctx, d.View)
		}
	case OutcomeDenySignIn:
		if r.SignIn != nil {
			r.SignIn.RequestSignIn(ctx)
		}
	case OutcomeDenyClosed:
		// no collaborator call
	}
}
