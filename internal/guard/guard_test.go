package guard

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func readOnlyVerbs(verbs ...string) ReadOnlyChecker {
	set := make(map[string]bool, len(verbs))
	for _, v := range verbs {
		set[v] = true
	}
	return func(argv []string) bool {
		if len(argv) == 0 {
			return false
		}
		return set[argv[len(argv)-1]]
	}
}

func TestCheckDenyOverridesAllow(t *testing.T) {
	rule := AccessRule{
		Allow: []string{"s3"},
		Deny:  []string{"s3 rm"},
	}
	err := Check("aws", []string{"s3", "rm", "bucket"}, rule, nil)
	assert.EqualError(t, err, "explicit deny: s3 rm")
}

func TestCheckDenyIsTokenWise(t *testing.T) {
	// rule "s3 r" must not match argv ["s3", "rm"] under token-wise matching,
	// even though it would under a naive string-prefix match.
	rule := AccessRule{Deny: []string{"s3 r"}}
	err := Check("aws", []string{"s3", "rm"}, rule, nil)
	assert.NoError(t, err)
}

func TestCheckWriteRequiresOptIn(t *testing.T) {
	rule := AccessRule{}
	readOnly := readOnlyVerbs("ls", "describe")
	err := Check("aws", []string{"s3", "cp", "a", "b"}, rule, readOnly)
	assert.EqualError(t, err, "Command blocked: aws s3 cp a b is a write operation. Enable write_access in config to allow.")
}

func TestCheckWriteAccessOptInAllows(t *testing.T) {
	rule := AccessRule{WriteAccess: map[string]bool{"s3 cp": true}}
	readOnly := readOnlyVerbs("ls")
	err := Check("aws", []string{"s3", "cp", "a", "b"}, rule, readOnly)
	assert.NoError(t, err)
}

func TestCheckWriteAccessFalseStillBlocks(t *testing.T) {
	rule := AccessRule{WriteAccess: map[string]bool{"s3 cp": false}}
	readOnly := readOnlyVerbs("ls")
	err := Check("aws", []string{"s3", "cp"}, rule, readOnly)
	assert.Error(t, err)
}

func TestCheckReadOnlyNeedsNoOptIn(t *testing.T) {
	rule := AccessRule{}
	readOnly := readOnlyVerbs("ls")
	err := Check("aws", []string{"s3", "ls"}, rule, readOnly)
	assert.NoError(t, err)
}

func TestCheckAllowListRestricts(t *testing.T) {
	rule := AccessRule{Allow: []string{"s3"}}
	err := Check("aws", []string{"ec2", "describe-instances"}, rule, nil)
	assert.EqualError(t, err, "not in allow list")
}

func TestCheckAllowListMatchPasses(t *testing.T) {
	rule := AccessRule{Allow: []string{"s3"}}
	err := Check("aws", []string{"s3", "ls"}, rule, nil)
	assert.NoError(t, err)
}

func TestCheckNoRuleNoProfilePasses(t *testing.T) {
	err := Check("aws", []string{"sts", "get-caller-identity"}, AccessRule{}, nil)
	assert.NoError(t, err)
}

func TestCheckEmptyArgvNeverMatchesNonEmptyPrefix(t *testing.T) {
	rule := AccessRule{Deny: []string{"s3"}}
	err := Check("aws", []string{}, rule, nil)
	assert.NoError(t, err)
}
