package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/pauljones0/offer-catalog/internal/models"
	"github.com/pauljones0/offer-catalog/internal/util"
)

// Client wraps the two Gemini capabilities the pipeline needs:
// one-sentence summarization and structured price extraction.
type Client struct {
	summaryModel *genai.GenerativeModel
	priceModel   *genai.GenerativeModel
}

type priceResult struct {
	OriginalPrice *float64 `json:"original_price"`
	OfferPrice    *float64 `json:"offer_price"`
	Currency      string   `json:"currency"`
}

func NewClient(ctx context.Context, apiKey, modelID string) (*Client, error) {
	if apiKey == "" {
		return nil, nil // Return nil client if no key provided
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	summaryModel := client.GenerativeModel(modelID)
	summaryModel.SetTemperature(0.0)

	priceModel := client.GenerativeModel(modelID)
	priceModel.SetTemperature(0.1) // Low temperature for deterministic output
	priceModel.ResponseMIMEType = "application/json"

	// Define the schema for Structured Outputs
	priceModel.ResponseSchema = &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"original_price": {
				Type:        genai.TypeNumber,
				Description: "The pre-discount price if the text states one. Omit if not stated.",
			},
			"offer_price": {
				Type:        genai.TypeNumber,
				Description: "The current/discounted price the offer is sold at. Omit if not stated.",
			},
			"currency": {
				Type:        genai.TypeString,
				Description: "ISO 4217 three-letter currency code for the prices, e.g. \"USD\". Omit if not stated.",
			},
		},
	}

	return &Client{summaryModel: summaryModel, priceModel: priceModel}, nil
}

// Summarize produces a one-sentence listing summary of the given text.
func (c *Client) Summarize(ctx context.Context, text string) (string, error) {
	if c == nil || c.summaryModel == nil {
		return "", nil // Graceful degradation
	}
	if strings.TrimSpace(text) == "" {
		return "", nil
	}

	prompt := fmt.Sprintf("Summarize the following offer/description in one concise sentence suitable for a listing:\n\n%s", text)

	resp, err := c.summaryModel.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini summarization failed: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("no response candidates from gemini")
	}

	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			return strings.TrimSpace(string(txt)), nil
		}
	}
	return "", fmt.Errorf("no text part in response")
}

// ExtractPrice pulls structured price data out of free-form offer text.
func (c *Client) ExtractPrice(ctx context.Context, text string) (models.PriceRecord, error) {
	if c == nil || c.priceModel == nil {
		return models.PriceRecord{}, nil // Graceful degradation
	}
	if strings.TrimSpace(text) == "" {
		return models.PriceRecord{}, nil
	}

	prompt := fmt.Sprintf(`
Extract pricing information from this offer text:
"%s"

Task:
1. Find the current price the offer is sold at (offer_price).
2. Find the original pre-discount price if one is stated (original_price).
3. Identify the ISO 4217 currency code of those prices.
Omit any field the text does not state. Do not guess.

Output JSON adhering to the schema.
`, text)

	resp, err := c.priceModel.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return models.PriceRecord{}, fmt.Errorf("gemini price extraction failed: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return models.PriceRecord{}, fmt.Errorf("no response candidates from gemini")
	}

	var result priceResult
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			// Clean up potential markdown formatting just in case
			jsonStr := strings.TrimSpace(string(txt))
			jsonStr = strings.TrimPrefix(jsonStr, "```json")
			jsonStr = strings.TrimPrefix(jsonStr, "```")
			jsonStr = strings.TrimSuffix(jsonStr, "```")

			if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
				return models.PriceRecord{}, fmt.Errorf("failed to parse gemini response: %w", err)
			}

			record := models.PriceRecord{
				OriginalPrice: result.OriginalPrice,
				OfferPrice:    result.OfferPrice,
			}
			if code, ok := util.NormalizeCurrency(result.Currency); ok {
				record.Currency = code
			}
			return record, nil
		}
	}

	return models.PriceRecord{}, fmt.Errorf("no text part in response")
}
