package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"bank-statement/internal/config"
	"bank-statement/internal/domain"
	"bank-statement/internal/server"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type IntegrationTestSuite struct {
	suite.Suite
	serverInstance *server.Server
	serverPort     string
	baseURL        string
	client         *http.Client

	mu  sync.Mutex
	now time.Time
}

func (suite *IntegrationTestSuite) SetupSuite() {
	cfg := &config.Config{
		ServerPort:         "0", // Let OS choose a free port
		ReadTimeout:        5 * time.Second,
		WriteTimeout:       5 * time.Second,
		IdleTimeout:        30 * time.Second,
		LogLevel:           "info",
		Timezone:           "UTC",
		CORSAllowedOrigins: []string{"http://localhost:5173"},
	}

	suite.now = time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	serverInstance, port, err := server.StartServer(cfg, server.WithClock(domain.ClockFunc(suite.clock)))
	if err != nil {
		suite.T().Fatalf("Failed to start application server: %s", err)
	}

	if serverInstance.GetPort() != port {
		suite.T().Fatalf("Server reports port %s, started on %s", serverInstance.GetPort(), port)
	}

	suite.serverInstance = serverInstance
	suite.serverPort = port
	suite.baseURL = serverInstance.GetBaseURL()
	suite.client = &http.Client{
		Timeout: 10 * time.Second,
	}

	if err := suite.waitForServerReady(); err != nil {
		suite.T().Fatal(err)
	}
}

func (suite *IntegrationTestSuite) TearDownSuite() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if suite.serverInstance != nil {
		suite.serverInstance.Stop(ctx)
	}
}

func (suite *IntegrationTestSuite) clock() time.Time {
	suite.mu.Lock()
	defer suite.mu.Unlock()
	return suite.now
}

func (suite *IntegrationTestSuite) setNow(t time.Time) {
	suite.mu.Lock()
	defer suite.mu.Unlock()
	suite.now = t
}

func (suite *IntegrationTestSuite) waitForServerReady() error {
	timeout := 10 * time.Second
	start := time.Now()

	for time.Since(start) < timeout {
		resp, err := http.Get(suite.baseURL + "/health")
		if err == nil && resp.StatusCode == http.StatusOK {
			resp.Body.Close()
			return nil
		}
		if resp != nil {
			resp.Body.Close()
		}
		time.Sleep(50 * time.Millisecond)
	}
	return fmt.Errorf("server not ready after %v", timeout)
}

// do sends a JSON request and returns the status code and the body
func (suite *IntegrationTestSuite) do(method, path, cpf string, body interface{}) (int, string) {
	var reader io.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, suite.baseURL+path, reader)
	suite.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")
	if cpf != "" {
		req.Header.Set("cpf", cpf)
	}

	resp, err := suite.client.Do(req)
	suite.Require().NoError(err)
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(respBody)
}

func (suite *IntegrationTestSuite) statement(cpf, path string) []map[string]interface{} {
	status, body := suite.do("GET", path, cpf, nil)
	suite.Require().Equal(http.StatusOK, status, body)

	var ops []map[string]interface{}
	suite.Require().NoError(json.Unmarshal([]byte(body), &ops))
	return ops
}

func (suite *IntegrationTestSuite) balance(cpf string) decimal.Decimal {
	status, body := suite.do("GET", "/balance", cpf, nil)
	suite.Require().Equal(http.StatusOK, status, body)

	var resp struct {
		Balance json.Number `json:"balance"`
	}
	suite.Require().NoError(json.Unmarshal([]byte(body), &resp))
	return decimal.RequireFromString(resp.Balance.String())
}

func (suite *IntegrationTestSuite) TestHealthCheck() {
	status, body := suite.do("GET", "/health", "", nil)
	assert.Equal(suite.T(), http.StatusOK, status)

	var healthResp map[string]interface{}
	assert.NoError(suite.T(), json.Unmarshal([]byte(body), &healthResp))
	assert.Equal(suite.T(), "healthy", healthResp["status"])
}

func (suite *IntegrationTestSuite) TestDuplicateCPF() {
	status, _ := suite.do("POST", "/account", "", map[string]string{"cpf": "111", "name": "Alice"})
	assert.Equal(suite.T(), http.StatusCreated, status)

	status, body := suite.do("POST", "/account", "", map[string]string{"cpf": "111", "name": "Bob"})
	assert.Equal(suite.T(), http.StatusConflict, status)
	assert.JSONEq(suite.T(), `{"error":"Customer already exists(cpf already in use)"}`, body)
}

func (suite *IntegrationTestSuite) TestConcurrentDuplicateCPF() {
	const attempts = 20
	codes := make(chan int, attempts)

	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			status, _ := suite.do("POST", "/account", "", map[string]string{"cpf": "race", "name": fmt.Sprintf("n%d", i)})
			codes <- status
		}(i)
	}
	wg.Wait()
	close(codes)

	counts := map[int]int{}
	for c := range codes {
		counts[c]++
	}
	assert.Equal(suite.T(), 1, counts[http.StatusCreated])
	assert.Equal(suite.T(), attempts-1, counts[http.StatusConflict])
}

func (suite *IntegrationTestSuite) TestDepositWithdrawFlow() {
	status, _ := suite.do("POST", "/account", "", map[string]string{"cpf": "222", "name": "Carl"})
	suite.Require().Equal(http.StatusCreated, status)

	status, body := suite.do("POST", "/deposit", "222", map[string]interface{}{"description": "salary", "amount": 100})
	suite.Require().Equal(http.StatusCreated, status)
	assert.Empty(suite.T(), body)

	ops := suite.statement("222", "/statement")
	suite.Require().Len(ops, 1)
	assert.Equal(suite.T(), "salary", ops[0]["description"])
	assert.Equal(suite.T(), float64(100), ops[0]["amount"])
	assert.Equal(suite.T(), "credit", ops[0]["type"])
	assert.NotEmpty(suite.T(), ops[0]["created_at"])

	// Overdraft is rejected and leaves the statement alone
	status, body = suite.do("POST", "/withdraw", "222", map[string]interface{}{"amount": 150})
	assert.Equal(suite.T(), http.StatusBadRequest, status)
	assert.JSONEq(suite.T(), `{"error":"Insufficient funds!"}`, body)
	assert.Len(suite.T(), suite.statement("222", "/statement"), 1)

	status, _ = suite.do("POST", "/withdraw", "222", map[string]interface{}{"amount": 40})
	suite.Require().Equal(http.StatusCreated, status)

	ops = suite.statement("222", "/statement")
	suite.Require().Len(ops, 2)
	assert.Equal(suite.T(), "salary", ops[0]["description"])
	assert.Equal(suite.T(), "debit", ops[1]["type"])
	assert.True(suite.T(), decimal.NewFromInt(60).Equal(suite.balance("222")))
}

func (suite *IntegrationTestSuite) TestUnknownCustomer() {
	status, body := suite.do("GET", "/statement", "does-not-exist", nil)
	assert.Equal(suite.T(), http.StatusNotFound, status)
	assert.JSONEq(suite.T(), `{"error":"Customer not found"}`, body)
}

func (suite *IntegrationTestSuite) TestStatementByDate() {
	status, _ := suite.do("POST", "/account", "", map[string]string{"cpf": "333", "name": "Dana"})
	suite.Require().Equal(http.StatusCreated, status)

	defer suite.setNow(suite.clock())

	suite.setNow(time.Date(2024, 6, 1, 23, 59, 59, 0, time.UTC))
	status, _ = suite.do("POST", "/deposit", "333", map[string]interface{}{"description": "june 1st", "amount": "10.50"})
	suite.Require().Equal(http.StatusCreated, status)

	suite.setNow(time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC))
	status, _ = suite.do("POST", "/deposit", "333", map[string]interface{}{"description": "june 2nd", "amount": 5})
	suite.Require().Equal(http.StatusCreated, status)

	ops := suite.statement("333", "/statement/date?date=2024-06-01")
	suite.Require().Len(ops, 1)
	assert.Equal(suite.T(), "june 1st", ops[0]["description"])
	assert.Equal(suite.T(), 10.5, ops[0]["amount"])

	ops = suite.statement("333", "/statement/date?date=2024-06-02")
	suite.Require().Len(ops, 1)
	assert.Equal(suite.T(), "june 2nd", ops[0]["description"])

	assert.Empty(suite.T(), suite.statement("333", "/statement/date?date=2024-06-03"))

	status, _ = suite.do("GET", "/statement/date?date=yesterday", "333", nil)
	assert.Equal(suite.T(), http.StatusBadRequest, status)
}

func (suite *IntegrationTestSuite) TestUpdateAccount() {
	status, _ := suite.do("POST", "/account", "", map[string]string{"cpf": "444", "name": "Eve"})
	suite.Require().Equal(http.StatusCreated, status)

	status, _ = suite.do("PUT", "/account", "444", map[string]string{"name": "Evelyn"})
	assert.Equal(suite.T(), http.StatusCreated, status)

	status, body := suite.do("GET", "/account", "444", nil)
	suite.Require().Equal(http.StatusOK, status)

	var account map[string]interface{}
	suite.Require().NoError(json.Unmarshal([]byte(body), &account))
	assert.Equal(suite.T(), "Evelyn", account["name"])
	assert.Equal(suite.T(), "444", account["cpf"])
}

func (suite *IntegrationTestSuite) TestCORSPreflight() {
	req, err := http.NewRequest("OPTIONS", suite.baseURL+"/deposit", nil)
	suite.Require().NoError(err)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "POST")
	req.Header.Set("Access-Control-Request-Headers", "cpf")

	resp, err := suite.client.Do(req)
	suite.Require().NoError(err)
	resp.Body.Close()

	assert.Equal(suite.T(), "http://localhost:5173", resp.Header.Get("Access-Control-Allow-Origin"))
}

func (suite *IntegrationTestSuite) TestMetricsEndpoint() {
	status, _ := suite.do("GET", "/health", "", nil)
	suite.Require().Equal(http.StatusOK, status)

	status, body := suite.do("GET", "/metrics", "", nil)
	assert.Equal(suite.T(), http.StatusOK, status)
	assert.True(suite.T(), strings.Contains(body, `http_requests_total{method="GET",path="/health",status="200"}`))
}

func TestIntegrationSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}
	suite.Run(t, new(IntegrationTestSuite))
}
