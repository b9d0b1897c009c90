package derrors

import (
	"fmt"

	"github.com/k1LoW/errors"
)

// Wrap はdeferで呼び出し、返却されるエラーにスタックトレースを付与します
func Wrap(errp *error) {
	if errp == nil || *errp == nil {
		return
	}
	*errp = errors.WithStack(*errp)
}

// Wrapf はWrapに加えてエラーメッセージに文脈を付け足します
func Wrapf(errp *error, format string, args ...any) {
	if errp == nil || *errp == nil {
		return
	}
	*errp = errors.WithStack(fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), *errp))
}
