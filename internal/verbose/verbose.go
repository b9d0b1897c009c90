package verbose

import (
	"fmt"
	"io"
	"os"
)

// Enabled は --verbose で有効になります
var Enabled bool

// Output は詳細ログの出力先です。標準出力は変換結果のために空けておく
var Output io.Writer = os.Stderr

func Printf(format string, args ...any) {
	if Enabled {
		fmt.Fprintf(Output, format, args...)
	}
}

func Println(args ...any) {
	if Enabled {
		fmt.Fprintln(Output, args...)
	}
}
