package cleaner

import (
	"errors"
	"fmt"
	"strings"

	"github.com/David-Botos/rewards-staging/pkg/model"
	"github.com/David-Botos/rewards-staging/pkg/rawdoc"
)

// ErrDuplicateUser is returned under DedupReject when an _id repeats
var ErrDuplicateUser = errors.New("duplicate user id")

// DedupPolicy decides what happens to users sharing an _id
type DedupPolicy string

const (
	DedupNone   DedupPolicy = "none"   // keep every row
	DedupFirst  DedupPolicy = "first"  // keep the first occurrence
	DedupLast   DedupPolicy = "last"   // keep the last occurrence
	DedupReject DedupPolicy = "reject" // fail the stage
)

// ParseDedupPolicy validates a policy name. Empty means DedupNone.
func ParseDedupPolicy(s string) (DedupPolicy, error) {
	switch p := DedupPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return DedupNone, nil
	case DedupNone, DedupFirst, DedupLast, DedupReject:
		return p, nil
	default:
		return "", fmt.Errorf("unknown dedup policy %q", s)
	}
}

// CleanUsers normalizes user documents. Duplicate ids are always audited;
// the policy decides whether they survive.
func CleanUsers(raw []rawdoc.User, policy DedupPolicy) ([]model.User, []model.CleaningOperation, error) {
	a := newAudit(model.Users.Name)

	users := make([]model.User, 0, len(raw))
	for _, u := range raw {
		users = append(users, cleanUser(a, u))
	}

	users, err := dedupUsers(a, users, policy)
	if err != nil {
		return nil, a.ops, err
	}
	return users, a.ops, nil
}

func cleanUser(a *audit, u rawdoc.User) model.User {
	out := model.User{
		ID:          u.ID,
		CreatedDate: toTimestamp(a, u.ID, "createdDate", u.Dates["createdDate"]),
		LastLogin:   toTimestamp(a, u.ID, "lastLogin", u.Dates["lastLogin"]),
		State:       withDefault(a, u.ID, "state", u.State, model.Unknown),
		Role:        model.Consumer,
		Active:      model.NullBool,
	}

	role := "NONE"
	if s, ok := u.Role.Text(); ok {
		role = strings.ToUpper(s)
	}
	if role != model.Consumer {
		a.record(u.ID, "role", model.OpRoleForced, "role_not_consumer", rawText(u.Role), model.Consumer)
	}

	if on, ok := u.Active.Bool(); ok {
		out.Active = model.NewBool(on)
	} else if !u.Active.IsNull() {
		a.record(u.ID, "active", model.OpUnknownFill, "not_a_boolean", rawText(u.Active), "")
	}
	return out
}

func dedupUsers(a *audit, users []model.User, policy DedupPolicy) ([]model.User, error) {
	seen := make(map[string]int, len(users))
	last := make(map[string]int, len(users))
	duplicates := 0
	for i, u := range users {
		if seen[u.ID] > 0 {
			duplicates++
			a.record(u.ID, "_id", model.OpDuplicateID, "repeated_id", u.ID, string(policy))
		}
		seen[u.ID]++
		last[u.ID] = i
	}

	if duplicates == 0 {
		return users, nil
	}

	switch policy {
	case DedupFirst:
		kept := make([]model.User, 0, len(seen))
		emitted := make(map[string]bool, len(seen))
		for _, u := range users {
			if emitted[u.ID] {
				continue
			}
			emitted[u.ID] = true
			kept = append(kept, u)
		}
		return kept, nil
	case DedupLast:
		kept := make([]model.User, 0, len(seen))
		for i, u := range users {
			if last[u.ID] == i {
				kept = append(kept, u)
			}
		}
		return kept, nil
	case DedupReject:
		return nil, fmt.Errorf("%w: %d repeated rows", ErrDuplicateUser, duplicates)
	default:
		return users, nil
	}
}
