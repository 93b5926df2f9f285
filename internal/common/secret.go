package common

import (
	"context"
	"fmt"
	"strings"

	"github.com/viant/scy/cred/secret"
)

// ExpandWithSecret loads a secret and expands placeholders in template.
func ExpandWithSecret(ctx context.Context, template, secretRef string) (string, error) {
	secretRef = strings.TrimSpace(secretRef)
	if secretRef == "" {
		return template, nil
	}
	if strings.TrimSpace(template) == "" {
		return "", fmt.Errorf("secret %q provided but template is empty", secretRef)
	}
	svc := secret.New()
	sec, err := svc.Lookup(ctx, secret.Resource(secretRef))
	if err != nil {
		return "", err
	}
	return sec.Expand(template), nil
}
