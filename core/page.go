package core

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Page defaults. Omitted optional request fields take these values.
const (
	DefaultPageName        = "New User Page"
	DefaultPageDescription = "Welcome to my tip page!"
	DefaultCTA             = "Send a tip"
	DefaultTemplateID      = 1
	DefaultGoalCurrency    = "SOL"
)

// DefaultColorPalette is the theme a page gets when none is supplied.
var DefaultColorPalette = ColorPalette{
	Primary:    "#6C5CE7",
	Secondary:  "#A29BFE",
	Background: "#FFFFFF",
	Text:       "#2D3436",
}

// ColorPalette is the visual theme of a page.
type ColorPalette struct {
	Primary    string `json:"primary"`
	Secondary  string `json:"secondary"`
	Background string `json:"background"`
	Text       string `json:"text"`
}

// Link is an entry of the page's social/link list.
type Link struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Page is the public content record owned by a wallet.
type Page struct {
	PageWalletID  string          `json:"pageWalletId"`
	WalletAddress string          `json:"walletAddress"`
	Name          string          `json:"name"`
	Subtitle      string          `json:"subtitle"`
	Description   string          `json:"description"`
	CTA           string          `json:"cta"`
	CTAMessage    string          `json:"ctaMessage"`
	CTALink       string          `json:"ctaLink"`
	BackgroundURL string          `json:"backgroundUrl"`
	LogoURL       string          `json:"logoUrl"`
	Footer        string          `json:"footer"`
	Location      string          `json:"location"`
	Date          string          `json:"date"`
	IsMinter      bool            `json:"isMinter"`
	TemplateID    int             `json:"templateId"`
	TokenName     string          `json:"tokenName"`
	TokenSupply   string          `json:"tokenSupply"`
	Links         []Link          `json:"links"`
	ColorPalette  ColorPalette    `json:"colorPalette"`
	GoalAmount    decimal.Decimal `json:"goalAmount"`
	RaisedAmount  decimal.Decimal `json:"raisedAmount"`
	GoalCurrency  string          `json:"goalCurrency"`
}

// DefaultPage builds the page provisioned for a wallet on its first login.
func DefaultPage(walletAddress string, now time.Time) *Page {
	return &Page{
		PageWalletID:  walletAddress,
		WalletAddress: walletAddress,
		Name:          DefaultPageName,
		Description:   DefaultPageDescription,
		CTA:           DefaultCTA,
		CTAMessage:    DefaultCTA,
		Date:          now.UTC().Format(time.RFC3339),
		TemplateID:    DefaultTemplateID,
		Links:         []Link{},
		ColorPalette:  DefaultColorPalette,
		GoalAmount:    decimal.Zero,
		RaisedAmount:  decimal.Zero,
		GoalCurrency:  DefaultGoalCurrency,
	}
}

// PageRequest is the body of a page write. It accepts both the original
// shape carrying `cta` and the later one carrying `ctaMessage`/`ctaLink`.
type PageRequest struct {
	PageWalletID  string           `json:"pageWalletId"`
	WalletAddress string           `json:"walletAddress"`
	Name          string           `json:"name"`
	Subtitle      string           `json:"subtitle"`
	Description   string           `json:"description"`
	CTA           string           `json:"cta"`
	CTAMessage    string           `json:"ctaMessage"`
	CTALink       string           `json:"ctaLink"`
	BackgroundURL string           `json:"backgroundUrl"`
	LogoURL       string           `json:"logoUrl"`
	Footer        string           `json:"footer"`
	Location      string           `json:"location"`
	Date          string           `json:"date"`
	IsMinter      bool             `json:"isMinter"`
	TemplateID    int              `json:"templateId"`
	TokenName     string           `json:"tokenName"`
	TokenSupply   string           `json:"tokenSupply"`
	Links         []Link           `json:"links"`
	ColorPalette  *ColorPalette    `json:"colorPalette"`
	GoalAmount    *decimal.Decimal `json:"goalAmount"`
	RaisedAmount  *decimal.Decimal `json:"raisedAmount"`
	GoalCurrency  string           `json:"goalCurrency"`
}

// Validate checks the required fields in order and names the first one missing.
func (r *PageRequest) Validate() error {
	switch {
	case blank(r.PageWalletID):
		return MissingField("pageWalletId")
	case blank(r.Name):
		return MissingField("name")
	case blank(r.CTA) && blank(r.CTAMessage):
		return MissingField("cta")
	case blank(r.Description):
		return MissingField("description")
	case r.GoalAmount != nil && r.GoalAmount.IsNegative():
		return &ValidationError{Field: "goalAmount", Reason: "goalAmount must not be negative."}
	case r.RaisedAmount != nil && r.RaisedAmount.IsNegative():
		return &ValidationError{Field: "raisedAmount", Reason: "raisedAmount must not be negative."}
	}
	return nil
}

// Page merges the request over the default table. owner is used when the
// request carries no walletAddress.
func (r *PageRequest) Page(owner string, now time.Time) *Page {
	p := &Page{
		PageWalletID:  r.PageWalletID,
		WalletAddress: r.WalletAddress,
		Name:          r.Name,
		Subtitle:      r.Subtitle,
		Description:   r.Description,
		CTA:           r.CTA,
		CTAMessage:    r.CTAMessage,
		CTALink:       r.CTALink,
		BackgroundURL: r.BackgroundURL,
		LogoURL:       r.LogoURL,
		Footer:        r.Footer,
		Location:      r.Location,
		Date:          r.Date,
		IsMinter:      r.IsMinter,
		TemplateID:    r.TemplateID,
		TokenName:     r.TokenName,
		TokenSupply:   r.TokenSupply,
		Links:         r.Links,
		ColorPalette:  DefaultColorPalette,
		GoalAmount:    decimal.Zero,
		RaisedAmount:  decimal.Zero,
		GoalCurrency:  r.GoalCurrency,
	}

	if p.WalletAddress == "" {
		p.WalletAddress = owner
	}
	if p.CTA == "" {
		p.CTA = p.CTAMessage
	}
	if p.CTAMessage == "" {
		p.CTAMessage = p.CTA
	}
	if p.Date == "" {
		p.Date = now.UTC().Format(time.RFC3339)
	}
	if p.TemplateID == 0 {
		p.TemplateID = DefaultTemplateID
	}
	if p.Links == nil {
		p.Links = []Link{}
	}
	if r.ColorPalette != nil {
		p.ColorPalette = *r.ColorPalette
	}
	if r.GoalAmount != nil {
		p.GoalAmount = *r.GoalAmount
	}
	if r.RaisedAmount != nil {
		p.RaisedAmount = *r.RaisedAmount
	}
	if p.GoalCurrency == "" {
		p.GoalCurrency = DefaultGoalCurrency
	}

	return p
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
