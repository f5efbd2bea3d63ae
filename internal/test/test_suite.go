// Command-line stress test that simulates concurrent register / login / logout
// sessions against the API and produces CSV + HTML reports.
package main

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"log"
	"net/http"
	"os"
	"sync"
	"time"

	"usercenter/config"

	"github.com/go-redis/redis/v8"
)

const baseURL = "http://127.0.0.1:8080/api/v1"

var client = &http.Client{Timeout: 10 * time.Second}

// sessionResult 汇总单个并发会话的行为，方便折叠到报告内。
type sessionResult struct {
	Account     string
	LoginCode   int
	LogoutCode  int
	CurrentCode int // 注销后访问 /users/current 的状态码，期望 401
	ErrMessage  string
	Timestamp   time.Time
}

// ======================= 基本 HTTP helper =======================

// doPostJSON is a thin helper that serializes a JSON body and sends a POST request.
func doPostJSON(url string, body any, cookie *http.Cookie) (int, []byte, *http.Cookie, error) {
	var buf []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return 0, nil, nil, err
		}
		buf = b
	}
	req, _ := http.NewRequest("POST", url, bytes.NewBuffer(buf))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, nil, err
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	var sessionCookie *http.Cookie
	for _, ck := range resp.Cookies() {
		if ck.Name == "uc_session" {
			sessionCookie = ck
		}
	}
	return resp.StatusCode, data, sessionCookie, nil
}

func doGet(url string, cookie *http.Cookie) (int, []byte, error) {
	req, _ := http.NewRequest("GET", url, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, data, nil
}

// ======================= 注册 / 登录 / 注销 Helpers =======================

// registerRaw issues a raw register request and returns status/data for assertions.
func registerRaw(account, password, planetCode string) (int, []byte, error) {
	body := map[string]string{
		"account":       account,
		"password":      password,
		"checkPassword": password,
		"planetCode":    planetCode,
	}
	status, data, _, err := doPostJSON(baseURL+"/users/register", body, nil)
	return status, data, err
}

// registerUser ensures the test account exists (idempotent).
func registerUser(account, password, planetCode string) error {
	status, _, err := registerRaw(account, password, planetCode)
	if err != nil {
		return err
	}
	if status != 200 && status != 400 { // 400 表示已存在（可接受）
		return fmt.Errorf("register status %d", status)
	}
	return nil
}

// loginRaw executes a login request and returns status/data/cookie.
func loginRaw(account, password string) (int, []byte, *http.Cookie, error) {
	body := map[string]string{"account": account, "password": password}
	return doPostJSON(baseURL+"/users/login", body, nil)
}

// loginUser simulates one client login and returns the issued session cookie.
func loginUser(account, password string) (*http.Cookie, error) {
	status, data, cookie, err := loginRaw(account, password)
	if err != nil {
		return nil, err
	}
	if status != 200 {
		return nil, fmt.Errorf("login status %d body=%s", status, string(data))
	}
	if cookie == nil {
		return nil, fmt.Errorf("login did not set session cookie, body=%s", string(data))
	}
	return cookie, nil
}

// logoutOne posts /users/logout with the provided session cookie.
func logoutOne(cookie *http.Cookie) (int, error) {
	status, _, _, err := doPostJSON(baseURL+"/users/logout", nil, cookie)
	return status, err
}

// currentStatus probes /users/current, used to verify session invalidation.
func currentStatus(cookie *http.Cookie) int {
	status, _, err := doGet(baseURL+"/users/current", cookie)
	if err != nil {
		return 0
	}
	return status
}

// ======================= 基础功能连通性测试 =======================

// endpointSmokeTests exercises register/login endpoints with positive and negative cases.
func endpointSmokeTests() error {
	account := fmt.Sprintf("smoke%d", time.Now().UnixNano()%1000000)
	password := "SmokePwd123"
	planetCode := fmt.Sprintf("%05d", time.Now().UnixNano()%100000)

	// Fresh registration should succeed.
	if status, _, err := registerRaw(account, password, planetCode); err != nil || status != http.StatusOK {
		return fmt.Errorf("register (new) failed: status=%d err=%v account=%s", status, err, account)
	}

	// Duplicate registration should be rejected (400).
	if status, _, err := registerRaw(account, password, planetCode); err != nil || status != http.StatusBadRequest {
		return fmt.Errorf("register (duplicate) expected 400, account=%s got %d err=%v", account, status, err)
	}

	// Login success path.
	status, data, cookie, err := loginRaw(account, password)
	if err != nil || status != http.StatusOK || cookie == nil {
		return fmt.Errorf("login (valid) failed: status=%d err=%v body=%s", status, err, string(data))
	}

	// Login with wrong password should be rejected with the generic error.
	if status, _, _, err := loginRaw(account, "wrongPwd123"); err != nil || status != http.StatusBadRequest {
		return fmt.Errorf("login (invalid creds) expected 400, got %d err=%v", status, err)
	}

	// Login with an unknown account must yield the same status (no enumeration).
	if status, _, _, err := loginRaw("ghost"+account, password); err != nil || status != http.StatusBadRequest {
		return fmt.Errorf("login (unknown account) expected 400, got %d err=%v", status, err)
	}

	// Current user works with the cookie.
	if status := currentStatus(cookie); status != http.StatusOK {
		return fmt.Errorf("current (valid session) expected 200, got %d", status)
	}

	log.Println("endpoint smoke tests passed: register/login/current basic scenarios verified")
	return nil
}

func sanityFlowTest(account, password, planetCode string) error {
	if err := registerUser(account, password, planetCode); err != nil {
		return fmt.Errorf("sanity register failed: %w", err)
	}

	cookie, err := loginUser(account, password)
	if err != nil {
		return fmt.Errorf("sanity login failed: %w", err)
	}

	if status := currentStatus(cookie); status != 200 {
		return fmt.Errorf("sanity current failed: status=%d", status)
	}

	status, err := logoutOne(cookie)
	if err != nil || status != 200 {
		return fmt.Errorf("sanity logout failed: status=%d err=%v", status, err)
	}

	// 注销后登录态必须消失
	if status := currentStatus(cookie); status != 401 {
		return fmt.Errorf("sanity current after logout expected 401, got %d", status)
	}

	// 无会话时重复注销仍然成功
	status, err = logoutOne(nil)
	if err != nil || status != 200 {
		return fmt.Errorf("sanity logout without session failed: status=%d err=%v", status, err)
	}
	return nil
}

// ======================= 并发测试与报告生成 =======================

// concurrentSessionTest orchestrates the whole test run (register -> login -> logout -> report).
func concurrentSessionTest(accountCount, maxConcurrent int, outCSV, outHTML string) error {
	password := "StressPwd123"
	stamp := time.Now().UnixNano() % 1000

	type account struct {
		name       string
		planetCode string
	}
	accounts := make([]account, 0, accountCount)
	for i := 0; i < accountCount; i++ {
		accounts = append(accounts, account{
			name:       fmt.Sprintf("st%03d%03d", stamp, i),
			planetCode: fmt.Sprintf("%02d%03d", stamp%100, i),
		})
	}

	// 1) 并发注册 + 登录
	jobs := make(chan account, len(accounts))
	resCh := make(chan sessionResult, len(accounts))

	var wg sync.WaitGroup
	worker := func() {
		defer wg.Done()
		for a := range jobs {
			res := sessionResult{Account: a.name, Timestamp: time.Now()}
			if err := registerUser(a.name, password, a.planetCode); err != nil {
				res.ErrMessage = err.Error()
				resCh <- res
				continue
			}
			status, _, cookie, err := loginRaw(a.name, password)
			res.LoginCode = status
			if err != nil || status != 200 || cookie == nil {
				if err != nil {
					res.ErrMessage = err.Error()
				} else {
					res.ErrMessage = "login rejected"
				}
				resCh <- res
				continue
			}

			// 2) 注销并验证登录态被清掉
			logoutCode, err := logoutOne(cookie)
			res.LogoutCode = logoutCode
			if err != nil {
				res.ErrMessage = err.Error()
				resCh <- res
				continue
			}
			res.CurrentCode = currentStatus(cookie)
			if res.CurrentCode == 200 {
				res.ErrMessage = "session still valid after logout"
			}
			resCh <- res
		}
	}

	workers := maxConcurrent
	if workers < 1 {
		workers = 10
	}
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go worker()
	}
	for _, a := range accounts {
		jobs <- a
	}
	close(jobs)
	wg.Wait()
	close(resCh)

	// 3) 写 CSV 报告
	csvFile, err := os.Create(outCSV)
	if err != nil {
		return err
	}
	defer csvFile.Close()
	csvWriter := csv.NewWriter(csvFile)
	defer csvWriter.Flush()
	_ = csvWriter.Write([]string{"Account", "LoginCode", "LogoutCode", "CurrentCode", "ErrMessage", "Timestamp"})

	var allResults []sessionResult
	for r := range resCh {
		_ = csvWriter.Write([]string{
			r.Account,
			fmt.Sprintf("%d", r.LoginCode),
			fmt.Sprintf("%d", r.LogoutCode),
			fmt.Sprintf("%d", r.CurrentCode),
			r.ErrMessage,
			r.Timestamp.Format(time.RFC3339),
		})
		allResults = append(allResults, r)
	}
	csvWriter.Flush()

	// 4) 生成简单 HTML 报告
	if err := writeHTMLReport(outHTML, allResults); err != nil {
		log.Printf("write HTML report error: %v", err)
	}
	return nil
}

// writeHTMLReport renders a basic table so failures are easy to eyeball.
func writeHTMLReport(path string, results []sessionResult) error {
	const tpl = `
<!doctype html>
<html>
<head><meta charset="utf-8"><title>Session Test Report</title>
<style>
table { border-collapse: collapse; width: 100%; }
th, td { border: 1px solid #ddd; padding: 8px; text-align:left }
th { background: #f4f4f4; }
.success { color: green; }
.fail { color: red; }
</style>
</head>
<body>
<h2>Session Test Report ({{ .GeneratedAt }})</h2>
<table>
<thead><tr><th>Account</th><th>LoginCode</th><th>LogoutCode</th><th>CurrentCode</th><th>Error</th><th>Timestamp</th></tr></thead>
<tbody>
{{ range .Rows }}
<tr>
<td>{{ .Account }}</td>
<td>{{ .LoginCode }}</td>
<td>{{ .LogoutCode }}</td>
<td>{{ .CurrentCode }}</td>
<td>{{ .ErrMessage }}</td>
<td>{{ .Timestamp }}</td>
</tr>
{{ end }}
</tbody>
</table>
</body>
</html>`

	data := struct {
		GeneratedAt string
		Rows        []sessionResult
	}{
		GeneratedAt: time.Now().Format(time.RFC3339),
		Rows:        results,
	}

	t, err := template.New("report").Parse(tpl)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return t.Execute(f, data)
}

// ======================= main =======================

func main() {
	rdb := initRedis()
	// 配置（调整为你需要的并发和账号数）
	account := fmt.Sprintf("sanity%d", time.Now().UnixNano()%1000000)
	password := "SanityPwd123"
	planetCode := fmt.Sprintf("%05d", time.Now().UnixNano()%100000)
	accountCount := 5  // 模拟并发会话数量（受登录限流 5/min 约束）
	maxConcurrent := 5 // 最大并发 worker 数
	outCSV := "session_report.csv"
	outHTML := "session_report.html"

	if err := endpointSmokeTests(); err != nil {
		log.Fatalf("endpoint smoke tests failed: %v", err)
	}
	if err := sanityFlowTest(account, password, planetCode); err != nil {
		log.Fatalf("basic flow verification failed: %v", err)
	}

	start := time.Now()
	if err := concurrentSessionTest(accountCount, maxConcurrent, outCSV, outHTML); err != nil {
		log.Fatalf("concurrent test failed: %v", err)
	}
	elapsed := time.Since(start)
	log.Printf("concurrent test finished in %s, CSV=%s HTML=%s\n", elapsed.String(), outCSV, outHTML)
	// 打印 Redis 状态
	keys, _ := rdb.Keys(rdb.Context(), "uc:*").Result()
	log.Printf("Redis keys after test: %v\n", keys)
	fmt.Println("All session tests completed successfully!")
}

// 初始化 Redis 并清理测试数据
func initRedis() *redis.Client {
	config.InitConfig("../../")
	config.InitRedis()
	rdb := config.RedisClient
	rdb.FlushDB(rdb.Context())
	fmt.Println("Redis cleared for testing")
	return rdb
}
