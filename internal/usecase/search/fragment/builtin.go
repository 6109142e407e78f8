package fragment

import (
	"strconv"
	"time"

	"github.com/wildone/asset-share-commons/internal/domain/search/predicate"
)

// NotExpiredName is the name of the built-in expiry filter.
const NotExpiredName = "not-expired"

// ExpiresProperty is the asset property holding the expiry timestamp.
const ExpiresProperty = "expires"

// ExpiryGranularity is the resolution of the expiry bound. Builds within the same
// interval produce identical groups.
const ExpiryGranularity = time.Minute

// NotExpired hides assets whose expiry date lies in the past. Assets without one stay visible.
type NotExpired struct {
	now func() time.Time
}

// NewNotExpired creates the expiry fragment. A nil clock uses time.Now.
func NewNotExpired(now func() time.Time) *NotExpired {
	if now == nil {
		now = time.Now
	}
	return &NotExpired{now: now}
}

// Name implements Fragment.
func (f *NotExpired) Name() string { return NotExpiredName }

// Group implements Fragment.
func (f *NotExpired) Group(map[string]string) predicate.Group {
	return predicate.NewGroup(NotExpiredName,
		predicate.New("daterange.property", ExpiresProperty),
		predicate.New("daterange.lowerBound", strconv.FormatInt(f.now().Truncate(ExpiryGranularity).UnixMilli(), 10)),
		predicate.New("daterange.lowerOperation", ">"),
		predicate.New("daterange.includeMissing", "true"),
	)
}

// Static is a fragment with fixed constraints, typically declared in the service configuration.
type Static struct {
	name  string
	group predicate.Group
}

// NewStatic creates a fragment from flat querybuilder parameters.
func NewStatic(name string, params map[string]string) *Static {
	return &Static{name: name, group: predicate.Parse(params).WithName(name)}
}

// Name implements Fragment.
func (f *Static) Name() string { return f.name }

// Group implements Fragment.
func (f *Static) Group(map[string]string) predicate.Group { return f.group }
