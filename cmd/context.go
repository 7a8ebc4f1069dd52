package cmd

import (
	"context"
	"os"
)

func contextWithFile(ctx context.Context, f *os.File) context.Context {
	return context.WithValue(ctx, logFileKey, f)
}

func fileFromContext(ctx context.Context) *os.File {
	if f, ok := ctx.Value(logFileKey).(*os.File); ok {
		return f
	}
	return nil
}
