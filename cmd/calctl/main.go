// sharedcal APIのコマンドラインクライアント。
package main

import (
	"context"
	"os"

	"github.com/nao1215/sharedcal/internal/cli"
)

func main() {
	os.Exit(cli.Main(context.Background()))
}
