package mailer

import (
	"context"
	"fmt"
	"strings"
)

// Stdout prints the digest instead of sending it, for dry runs.
type Stdout struct{}

func (Stdout) Send(_ context.Context, subject, body string) error {
	fmt.Println(strings.Repeat("=", 72))
	fmt.Println(subject)
	fmt.Println(strings.Repeat("=", 72))
	fmt.Println()
	fmt.Println(body)
	return nil
}
