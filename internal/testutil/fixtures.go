package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/dgarcia/dashboard-api/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// UserBuilder creates test users with a builder pattern
type UserBuilder struct {
	firstName string
	lastName  string
	username  string
	password  string
	active    bool
}

// NewUserBuilder creates a new UserBuilder with default values
func NewUserBuilder() *UserBuilder {
	return &UserBuilder{
		firstName: "Test",
		lastName:  "User",
		username:  fmt.Sprintf("testuser_%s", uuid.New().String()[:8]),
		password:  "testpassword123",
		active:    true,
	}
}

// WithUsername sets the login name
func (b *UserBuilder) WithUsername(username string) *UserBuilder {
	b.username = username
	return b
}

// WithPassword sets the password
func (b *UserBuilder) WithPassword(password string) *UserBuilder {
	b.password = password
	return b
}

// WithName sets the first and last name
func (b *UserBuilder) WithName(first, last string) *UserBuilder {
	b.firstName = first
	b.lastName = last
	return b
}

// Inactive marks the account as inactive
func (b *UserBuilder) Inactive() *UserBuilder {
	b.active = false
	return b
}

// Build creates the user in the database and returns the user with the raw password
func (b *UserBuilder) Build(t *testing.T, db *gorm.DB) (*domain.User, string) {
	t.Helper()

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(b.password), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &domain.User{
		ID:           uuid.New(),
		FirstName:    b.firstName,
		LastName:     b.lastName,
		Username:     b.username,
		PasswordHash: string(hashedPassword),
		Active:       b.active,
		CreatedAt:    time.Now().UTC(),
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user, b.password
}

// AnalysisBuilder creates test analyses with a builder pattern
type AnalysisBuilder struct {
	name         string
	ownerID      uuid.UUID
	data         string
	filters      string
	invoiceCount int
	totalValue   decimal.Decimal
}

// NewAnalysisBuilder creates a new AnalysisBuilder with default values
func NewAnalysisBuilder(owner *domain.User) *AnalysisBuilder {
	return &AnalysisBuilder{
		name:         fmt.Sprintf("analysis_%s", uuid.New().String()[:8]),
		ownerID:      owner.ID,
		data:         `{"rows":[]}`,
		invoiceCount: 0,
		totalValue:   decimal.Zero,
	}
}

// WithName sets the display name
func (b *AnalysisBuilder) WithName(name string) *AnalysisBuilder {
	b.name = name
	return b
}

// WithData sets the raw JSON payload
func (b *AnalysisBuilder) WithData(data string) *AnalysisBuilder {
	b.data = data
	return b
}

// WithFilters sets the raw JSON filter criteria
func (b *AnalysisBuilder) WithFilters(filters string) *AnalysisBuilder {
	b.filters = filters
	return b
}

// WithTotals sets the invoice count and monetary total
func (b *AnalysisBuilder) WithTotals(count int, total decimal.Decimal) *AnalysisBuilder {
	b.invoiceCount = count
	b.totalValue = total
	return b
}

// Build creates the analysis in the database
func (b *AnalysisBuilder) Build(t *testing.T, db *gorm.DB) *domain.Analysis {
	t.Helper()

	analysis := &domain.Analysis{
		ID:           uuid.New(),
		Name:         b.name,
		UserID:       b.ownerID,
		Data:         datatypes.JSON(b.data),
		InvoiceCount: b.invoiceCount,
		TotalValue:   b.totalValue,
		CreatedAt:    time.Now().UTC(),
	}
	if b.filters != "" {
		analysis.Filters = datatypes.JSON(b.filters)
	}

	if err := db.Create(analysis).Error; err != nil {
		t.Fatalf("failed to create analysis: %v", err)
	}

	return analysis
}

// LoginResponse matches the API login response
type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expiresAt"`
	User      struct {
		ID       string `json:"id"`
		Username string `json:"username"`
		FullName string `json:"fullName"`
	} `json:"user"`
}

// Login authenticates against the test server and returns the bearer token
func Login(t *testing.T, ts *TestServer, username, password string) string {
	t.Helper()

	reqBody := map[string]string{
		"username": username,
		"password": password,
	}
	body, _ := json.Marshal(reqBody)

	resp, err := http.Post(ts.APIURL("/auth/login"), "application/json", bytes.NewBuffer(body))
	if err != nil {
		t.Fatalf("failed to login: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected login status code: %d", resp.StatusCode)
	}

	var loginResp LoginResponse
	if err := json.NewDecoder(resp.Body).Decode(&loginResp); err != nil {
		t.Fatalf("failed to decode login response: %v", err)
	}

	return loginResp.Token
}

// DoJSON sends an authenticated JSON request to the test server
func DoJSON(t *testing.T, method, url, token string, payload any) *http.Response {
	t.Helper()

	var body *bytes.Buffer
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("failed to marshal payload: %v", err)
		}
		body = bytes.NewBuffer(raw)
	} else {
		body = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequest(method, url, body)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}
