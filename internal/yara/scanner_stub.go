//go:build !cgo || no_yara

package yara

func matchRules(_, _ string) ([]string, error) {
	return nil, ErrUnavailable
}
