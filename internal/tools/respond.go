package tools

import (
	"strings"

	"github.com/medvedikur/erc3-mine-sub001/internal/links"
	"github.com/medvedikur/erc3-mine-sub001/internal/model"
)

// parseRespond implements the response-tool argument reconciliation (spec
// §4.8, grounded on tools/parsers/response.py): outcome inference, link
// normalization/auto-extraction bounded to the primary-answer segment,
// mutation/search entity reconciliation, query-subject filtering, and the
// unconditional security redaction for denied_security/error_internal.
func parseRespond(ctx *ParseContext) (TypedAction, *ParseError) {
	querySpecificity := strings.ToLower(strings.TrimSpace(getString(ctx.Args, "query_specificity", "specificity")))
	if querySpecificity == "" {
		querySpecificity = "unspecified"
	}
	denialBasis := strings.ToLower(strings.TrimSpace(getString(ctx.Args, "denial_basis", "denial_reason")))

	message := getString(ctx.Args, "message", "text", "response", "answer", "content", "details", "body")
	if message == "" {
		qs := getString(ctx.Args, "query_specificity")
		if len(qs) > 50 {
			message = qs
		} else {
			message = "No message provided."
		}
	}

	outcome := Outcome(strings.ToLower(getString(ctx.Args, "outcome")))
	if outcome == "" {
		outcome = inferOutcome(message)
	}

	rawLinks, _ := ctx.Args["links"].([]any)
	linkSet := links.NormalizeLinks(rawLinks)

	// Auto-extract entities from the message, but only for ok_answer, and
	// only when the model supplied no explicit links.
	if len(linkSet) == 0 && outcome == OutcomeOKAnswer {
		linkSet = autoExtractLinks(message)
	}

	if len(linkSet) > 0 && ctx.ValidateEmployee != nil {
		linkSet = links.ValidateEmployeeLinks(linkSet, ctx.ValidateEmployee)
	}

	linkSet = reconcileSharedEntities(ctx, linkSet, outcome, message)

	linkSet = links.Deduplicate(linkSet)
	linkSet = filterQuerySubjects(ctx, linkSet)

	if outcome == OutcomeErrorInternal || outcome == OutcomeDeniedSecurity {
		linkSet = nil
	}

	return Req_ProvideAgentResponse{
		Message:          message,
		Outcome:          outcome,
		Links:            linkSet,
		QuerySpecificity: querySpecificity,
		DenialBasis:      denialBasis,
	}, nil
}

func inferOutcome(message string) Outcome {
	msg := strings.ToLower(message)
	negative := strings.Contains(msg, "cannot") || strings.Contains(msg, "unable to") || strings.Contains(msg, "could not")
	if !negative {
		return OutcomeOKAnswer
	}
	if strings.Contains(msg, "tool") || strings.Contains(msg, "system") {
		return OutcomeNoneUnsupported
	}
	if strings.Contains(msg, "permission") || strings.Contains(msg, "access") ||
		strings.Contains(msg, "allow") || strings.Contains(msg, "restricted") {
		return OutcomeDeniedSecurity
	}
	return OutcomeNoneClarification
}

// autoExtractLinks applies the primary-answer-segment heuristic: extract
// from the first sentence/line first; only fall back to the whole message
// if that segment yields nothing. When the primary segment does yield
// links, non-employee links from the full message are still kept, but
// employee links are restricted to the primary segment if it already
// contains one — this prevents a runner-up employee id mentioned in a
// later explanatory sentence from polluting the answer.
func autoExtractLinks(message string) []model.Link {
	primary := links.PrimaryAnswerSegment(message)
	primaryLinks := links.ExtractFromMessage(primary)
	if len(primaryLinks) == 0 {
		return links.ExtractFromMessage(message)
	}

	full := links.ExtractFromMessage(message)
	primaryHasEmployee := false
	for _, l := range primaryLinks {
		if l.Kind == model.LinkEmployee {
			primaryHasEmployee = true
			break
		}
	}

	var nonEmployee, employee []model.Link
	for _, l := range full {
		if l.Kind != model.LinkEmployee {
			nonEmployee = append(nonEmployee, l)
		}
	}
	if primaryHasEmployee {
		for _, l := range primaryLinks {
			if l.Kind == model.LinkEmployee {
				employee = append(employee, l)
			}
		}
	} else {
		for _, l := range full {
			if l.Kind == model.LinkEmployee {
				employee = append(employee, l)
			}
		}
	}

	return links.Deduplicate(append(nonEmployee, employee...))
}

// reconcileSharedEntities unions mutation/search entities into linkSet per
// the rules in spec §4.8: mutations add only the mutated entities (not the
// current user unless they were the target); ok_answer reads add only
// search entities literally mentioned in the message, plus customers
// related to a mentioned project; ok_not_found adds neither.
func reconcileSharedEntities(ctx *ParseContext, linkSet []model.Link, outcome Outcome, message string) []model.Link {
	if ctx.Shared == nil {
		return linkSet
	}
	hadMutations, _ := ctx.Shared["had_mutations"].(bool)
	mutationEntities, _ := ctx.Shared["mutation_entities"].([]model.Link)
	searchEntities, _ := ctx.Shared["search_entities"].([]model.Link)

	switch {
	case hadMutations:
		// currentUser is passed empty: the mutation's own entities decide
		// inclusion here, never the current user unless they were the target.
		linkSet = links.AddMutationEntities(linkSet, mutationEntities, "")
	case outcome == OutcomeOKAnswer && len(searchEntities) > 0:
		messageLower := strings.ToLower(message)
		mentioned := map[string]bool{}
		for _, e := range searchEntities {
			if e.ID != "" && strings.Contains(messageLower, strings.ToLower(e.ID)) {
				mentioned[e.ID] = true
			}
		}
		projectMentioned := false
		for id := range mentioned {
			if strings.HasPrefix(id, "proj_") {
				projectMentioned = true
				break
			}
		}
		var toAdd []model.Link
		for _, e := range searchEntities {
			shouldAdd := e.ID != "" && mentioned[e.ID]
			if !shouldAdd && e.Kind == model.LinkCustomer && projectMentioned {
				shouldAdd = true
			}
			if shouldAdd {
				toAdd = append(toAdd, e)
			}
		}
		linkSet = links.AddSearchEntities(linkSet, toAdd)
	}
	return linkSet
}

func filterQuerySubjects(ctx *ParseContext, linkSet []model.Link) []model.Link {
	subjects, _ := ctx.Shared["query_subject_ids"].(map[string]bool)
	if len(subjects) == 0 {
		return linkSet
	}
	out := make([]model.Link, 0, len(linkSet))
	for _, l := range linkSet {
		if !subjects[l.ID] {
			out = append(out, l)
		}
	}
	return out
}
