package ocr

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Azure/azure-sdk-for-go/services/cognitiveservices/v3.0/computervision"
	"github.com/Azure/go-autorest/autorest"
)

// AzureRecognizer sends page images to Azure Computer Vision printed-text OCR.
type AzureRecognizer struct {
	client computervision.BaseClient
}

func NewAzureRecognizer(endpoint, apiKey string) *AzureRecognizer {
	client := computervision.New(endpoint)
	client.Authorizer = autorest.NewCognitiveServicesAuthorizer(apiKey)
	return &AzureRecognizer{client: client}
}

func (a *AzureRecognizer) Recognize(ctx context.Context, imagePath string) (string, error) {
	data, err := os.ReadFile(imagePath)
	if err != nil {
		return "", fmt.Errorf("read page image: %w", err)
	}
	result, err := a.client.RecognizePrintedTextInStream(
		ctx,
		true,
		io.NopCloser(bytes.NewReader(data)),
		computervision.OcrLanguages(computervision.En),
	)
	if err != nil {
		return "", fmt.Errorf("azure ocr: %w", err)
	}
	return ocrResultText(result), nil
}

// ocrResultText flattens regions into one line of text per OCR line.
func ocrResultText(result computervision.OcrResult) string {
	if result.Regions == nil {
		return ""
	}
	var b strings.Builder
	for _, region := range *result.Regions {
		if region.Lines == nil {
			continue
		}
		for _, line := range *region.Lines {
			if line.Words == nil {
				continue
			}
			words := make([]string, 0, len(*line.Words))
			for _, word := range *line.Words {
				if word.Text != nil {
					words = append(words, *word.Text)
				}
			}
			b.WriteString(strings.Join(words, " "))
			b.WriteString("\n")
		}
	}
	return b.String()
}
