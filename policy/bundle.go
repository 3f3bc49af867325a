package policy

import "errors"

// Bundle combines policies; a file is continued and an entry accepted only if
// all policies agree
type Bundle struct {
	policies []Policy
}

// NewBundleOf creates a bundle of the passed policies
func NewBundleOf(policies ...Policy) *Bundle {
	return &Bundle{policies: policies}
}

// Policies returns the bundled policies
func (p *Bundle) Policies() []Policy {
	return p.policies
}

// CanContinueFile asks every policy and continues only if all agree
func (p *Bundle) CanContinueFile(path string) (bool, error) {
	result := true
	var errs []error
	for _, policy := range p.policies {
		ok, err := policy.CanContinueFile(path)
		if err != nil {
			errs = append(errs, err)
		}
		result = result && ok
	}
	if len(errs) > 0 {
		return false, errors.Join(errs...)
	}
	return result, nil
}

// Init initializes every policy, collecting all errors
func (p *Bundle) Init(path string) error {
	var errs []error
	for _, policy := range p.policies {
		if err := policy.Init(path); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// CanAcceptLogEntry asks every policy so all counters see the entry, and
// accepts only if all accept
func (p *Bundle) CanAcceptLogEntry(size int) bool {
	result := true
	for _, policy := range p.policies {
		if !policy.CanAcceptLogEntry(size) {
			result = false
		}
	}
	return result
}
