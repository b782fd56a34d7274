package main

import (
	"context"
	"fmt"

	"github.com/ternarybob/spendsense/internal/common"
)

func runVersion(ctx context.Context, args []string) error {
	fmt.Printf("SpendSense version %s\n", common.GetFullVersion())
	return nil
}
