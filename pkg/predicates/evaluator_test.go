package predicates

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/windowsadmins/cimianboot/pkg/blocking"
	"github.com/windowsadmins/cimianboot/pkg/registry/mockregistry"
)

const ndpKey = `HKLM\SOFTWARE\Microsoft\NET Framework Setup\NDP\v3.5`

func testRegistry() *mockregistry.MockRegistry {
	return &mockregistry.MockRegistry{
		Keys: map[string]*mockregistry.MockKey{
			ndpKey: {
				KName: ndpKey,
				KValues: []*mockregistry.MockValue{
					{VName: "SP", VDataString: "0"},
					{VName: "Version", VDataString: "1.2.3.4"},
					{VName: "Edition", VDataString: "Enterprise"},
					{VName: "Build", VDataString: "not-a-number"},
				},
			},
		},
		Keys64: map[string]*mockregistry.MockKey{
			`HKLM\SOFTWARE\Vendor`: {KName: `HKLM\SOFTWARE\Vendor`},
		},
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		desc       string
		valueType  string
		comparison string
		actual     string
		expected   string
		want       bool
		wantErr    bool
	}{
		{desc: "version prefix equal", valueType: TypeVersion, comparison: "==", actual: "1.2.3.4", expected: "1.2", want: true},
		{desc: "version prefix not less", valueType: TypeVersion, comparison: "<", actual: "1.2.3.4", expected: "1.2", want: false},
		{desc: "version greater", valueType: TypeVersion, comparison: ">", actual: "v10.1", expected: "9.8", want: true},
		{desc: "version embedded in text", valueType: TypeVersion, comparison: ">=", actual: "Build 4.7.2 (release)", expected: "4.7.1", want: true},
		{desc: "version not equal", valueType: TypeVersion, comparison: "!=", actual: "2.0", expected: "2.1", want: true},
		{desc: "version unknown operator", valueType: TypeVersion, comparison: "~=", actual: "2.0", expected: "2.0", want: false},
		{desc: "version missing token", valueType: TypeVersion, comparison: "==", actual: "none", expected: "1.0", wantErr: true},
		{desc: "long less or equal", valueType: TypeLong, comparison: "<=", actual: "0", expected: "1", want: true},
		{desc: "long greater", valueType: TypeLong, comparison: ">", actual: "528040", expected: "461808", want: true},
		{desc: "long equal", valueType: TypeLong, comparison: "==", actual: " 7 ", expected: "7", want: true},
		{desc: "long unknown operator", valueType: TypeLong, comparison: "=", actual: "7", expected: "7", want: false},
		{desc: "long parse failure", valueType: TypeLong, comparison: "==", actual: "x", expected: "7", wantErr: true},
		{desc: "string equal", valueType: TypeString, comparison: "==", actual: "Enterprise", expected: "Enterprise", want: true},
		{desc: "string case sensitive", valueType: TypeString, comparison: "==", actual: "Enterprise", expected: "enterprise", want: false},
		{desc: "string not equal", valueType: TypeString, comparison: "!=", actual: "Enterprise", expected: "Home", want: true},
		{desc: "string ordering unsupported", valueType: TypeString, comparison: ">", actual: "b", expected: "a", want: false},
		{desc: "match", valueType: TypeMatch, comparison: "", actual: "Enterprise", expected: "^Ent", want: true},
		{desc: "match miss", valueType: TypeMatch, comparison: "", actual: "Home", expected: "^Ent", want: false},
		{desc: "match bad pattern", valueType: TypeMatch, comparison: "", actual: "Home", expected: "(", wantErr: true},
		{desc: "type case insensitive", valueType: "LONG", comparison: "==", actual: "1", expected: "1", want: true},
		{desc: "unknown type", valueType: "float", comparison: "==", actual: "1", expected: "1", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.desc, func(t *testing.T) {
			got, err := Compare(tc.valueType, tc.comparison, tc.actual, tc.expected)
			if tc.wantErr {
				require.Error(t, err)
				assert.False(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestEvaluate(t *testing.T) {
	e := NewEvaluator(testRegistry(), blocking.Static{"outlook.exe", "explorer.exe"})

	tests := []struct {
		desc string
		p    Precondition
		want bool
	}{
		{desc: "key exists", p: RegKey{Path: ndpKey}, want: true},
		{desc: "key exists inverted", p: RegKey{Path: ndpKey, Inverse: true}, want: false},
		{desc: "key missing", p: RegKey{Path: `HKLM\SOFTWARE\Missing`}, want: false},
		{desc: "key missing inverted", p: RegKey{Path: `HKLM\SOFTWARE\Missing`, Inverse: true}, want: true},
		{desc: "key only in 64-bit view", p: RegKey{Path: `HKLM\SOFTWARE\Vendor`, X64: true}, want: true},
		{desc: "key not in default view", p: RegKey{Path: `HKLM\SOFTWARE\Vendor`}, want: false},
		{desc: "bad root", p: RegKey{Path: `HKXX\SOFTWARE`}, want: false},
		{
			desc: "service pack check inverted",
			p:    RegValue{Path: ndpKey, ValueName: "SP", Value: "1", Type: TypeLong, Comparison: "<=", Inverse: true},
			want: false,
		},
		{
			desc: "service pack check",
			p:    RegValue{Path: ndpKey, ValueName: "SP", Value: "1", Type: TypeLong, Comparison: "<="},
			want: true,
		},
		{
			desc: "version value",
			p:    RegValue{Path: ndpKey, ValueName: "Version", Value: "1.2", Type: TypeVersion, Comparison: "=="},
			want: true,
		},
		{
			desc: "missing value",
			p:    RegValue{Path: ndpKey, ValueName: "Nope", Value: "1", Type: TypeLong, Comparison: "=="},
			want: false,
		},
		{
			desc: "missing value inverted",
			p:    RegValue{Path: ndpKey, ValueName: "Nope", Value: "1", Type: TypeLong, Comparison: "==", Inverse: true},
			want: true,
		},
		{
			desc: "unparsable value inverted",
			p:    RegValue{Path: ndpKey, ValueName: "Build", Value: "1", Type: TypeLong, Comparison: "==", Inverse: true},
			want: true,
		},
		{desc: "process running", p: RunningProcess{Name: "outlook"}, want: true},
		{desc: "process running with extension", p: RunningProcess{Name: "outlook.exe"}, want: true},
		{desc: "process case sensitive", p: RunningProcess{Name: "Outlook"}, want: false},
		{desc: "process not running inverted", p: RunningProcess{Name: "winword", Inverse: true}, want: true},
		{desc: "process running inverted", p: RunningProcess{Name: "explorer", Inverse: true}, want: false},
	}

	for _, tc := range tests {
		t.Run(tc.desc, func(t *testing.T) {
			assert.Equal(t, tc.want, e.Evaluate(tc.p))
		})
	}
}

func TestInverseKeepsErrorMessage(t *testing.T) {
	e := NewEvaluator(testRegistry(), blocking.Static{"outlook.exe"})
	p := RunningProcess{Name: "outlook", Inverse: true, Message: "Please close Outlook."}

	failed := e.FirstFailure([]Precondition{p})
	require.NotNil(t, failed)
	assert.Equal(t, "Please close Outlook.", failed.ErrorMessage())
}

func TestChecksOrder(t *testing.T) {
	c := Checks{
		RunningProcesses: []RunningProcess{{Name: "p"}},
		RegistryValues:   []RegValue{{Path: `HKLM\v`}},
		RegistryKeys:     []RegKey{{Path: `HKLM\k1`}, {Path: `HKLM\k2`}},
	}

	want := []Precondition{
		RegKey{Path: `HKLM\k1`},
		RegKey{Path: `HKLM\k2`},
		RegValue{Path: `HKLM\v`},
		RunningProcess{Name: "p"},
	}
	if diff := cmp.Diff(want, c.All()); diff != "" {
		t.Errorf("Checks.All() mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 4, c.Len())
}

func TestFirstFailure(t *testing.T) {
	e := NewEvaluator(testRegistry(), blocking.Static{})
	checks := Checks{
		RegistryKeys:     []RegKey{{Path: ndpKey, Message: "first"}},
		RunningProcesses: []RunningProcess{{Name: "setup", Message: "second"}, {Name: "other", Message: "third"}},
	}

	failed := e.FirstFailure(checks.All())
	require.NotNil(t, failed)
	assert.Equal(t, "second", failed.ErrorMessage())

	assert.Nil(t, e.FirstFailure(Checks{RegistryKeys: []RegKey{{Path: ndpKey}}}.All()))
	assert.Nil(t, e.FirstFailure(nil))
}
