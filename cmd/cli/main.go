package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "auth":
		handleAuth(args)
	case "account":
		handleAccount(args)
	case "issue":
		handleIssue(args)
	case "comment":
		handleComment(args)
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func handleAuth(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: taskmanager auth <register|login|logout|who>")
		return
	}

	subCmd := args[0]
	switch subCmd {
	case "register":
		registerAccount(args[1:])
	case "login":
		login(args[1:])
	case "logout":
		logout()
	case "who":
		whoAmI()
	default:
		fmt.Printf("unknown auth command: %s\n", subCmd)
	}
}

func handleAccount(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: taskmanager account <list|delete>")
		return
	}

	subCmd := args[0]
	switch subCmd {
	case "list":
		listAccounts(args[1:])
	case "delete":
		deleteAccount(args[1:])
	default:
		fmt.Printf("unknown account command: %s\n", subCmd)
	}
}

func handleIssue(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: taskmanager issue <list|get|create|patch|delete>")
		return
	}

	subCmd := args[0]
	switch subCmd {
	case "list":
		listIssues(args[1:])
	case "get":
		getIssue(args[1:])
	case "create":
		createIssue(args[1:])
	case "patch":
		patchIssue(args[1:])
	case "delete":
		deleteIssue(args[1:])
	default:
		fmt.Printf("unknown issue command: %s\n", subCmd)
	}
}

func handleComment(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: taskmanager comment <add|list>")
		return
	}

	subCmd := args[0]
	switch subCmd {
	case "add":
		addComment(args[1:])
	case "list":
		listComments(args[1:])
	default:
		fmt.Printf("unknown comment command: %s\n", subCmd)
	}
}

// Auth commands
func registerAccount(args []string) {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "password")

	fs.Parse(args)

	if *email == "" || *password == "" {
		fmt.Println("Error: email and password are required")
		fs.PrintDefaults()
		return
	}

	payload := map[string]string{"email": *email, "password": *password}
	data, _ := json.Marshal(payload)
	resp, err := http.Post(getAPIURL()+"/accounts", "application/json", bytes.NewReader(data))
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode == 201 {
		fmt.Printf("✓ Account registered: %s\n", *email)
	} else {
		fmt.Printf("✗ Registration failed: %s\n", readError(resp))
	}
}

func login(args []string) {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "password")

	fs.Parse(args)

	if *email == "" || *password == "" {
		fmt.Println("Error: email and password are required")
		fs.PrintDefaults()
		return
	}

	payload := map[string]string{"email": *email, "password": *password}
	data, _ := json.Marshal(payload)
	resp, err := http.Post(getAPIURL()+"/auth/login", "application/json", bytes.NewReader(data))
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		fmt.Printf("✗ Login failed: %s\n", readError(resp))
		return
	}

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	if token, ok := result["token"].(string); ok {
		saveToken(token)
		fmt.Printf("✓ Logged in as: %s\n", *email)
	}
}

func logout() {
	os.Remove(tokenFile())
	fmt.Println("✓ Logged out")
}

func whoAmI() {
	resp, err := doRequest("GET", "/accounts/me", nil)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		fmt.Println("Not logged in")
		return
	}

	var account map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&account)
	fmt.Printf("✓ Logged in as: %v (id %v)\n", account["email"], account["id"])
}

// Account commands
func listAccounts(args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	page := fs.Int("page", 0, "page number")
	size := fs.Int("size", 10, "page size")
	fs.Parse(args)

	resp, err := doRequest("GET", fmt.Sprintf("/accounts?page=%d&size=%d", *page, *size), nil)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		fmt.Printf("✗ Failed: %s\n", readError(resp))
		return
	}

	var result pageResult
	json.NewDecoder(resp.Body).Decode(&result)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tEMAIL")
	for _, a := range result.Content {
		fmt.Fprintf(w, "%v\t%v\n", a["id"], a["email"])
	}
	w.Flush()
	fmt.Printf("page %d of %d (%d total)\n", result.Page+1, result.TotalPages, result.TotalElements)
}

func deleteAccount(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: taskmanager account delete <account-id>")
		return
	}

	resp, err := doRequest("DELETE", "/accounts/"+args[0], nil)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode == 204 {
		fmt.Printf("✓ Account %s deleted\n", args[0])
	} else {
		fmt.Printf("✗ Failed: %s\n", readError(resp))
	}
}

// Issue commands
func listIssues(args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	page := fs.Int("page", 0, "page number")
	size := fs.Int("size", 10, "page size")
	sort := fs.String("sort", "createdAt,desc", "sort field and direction")
	fs.Parse(args)

	resp, err := doRequest("GET", fmt.Sprintf("/issues?page=%d&size=%d&sort=%s", *page, *size, *sort), nil)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		fmt.Printf("✗ Failed: %s\n", readError(resp))
		return
	}

	var result pageResult
	json.NewDecoder(resp.Body).Decode(&result)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tSTATUS\tPRIORITY")
	for _, i := range result.Content {
		fmt.Fprintf(w, "%v\t%v\t%v\t%v\n", i["id"], i["title"], i["currentStatus"], i["priority"])
	}
	w.Flush()
	fmt.Printf("page %d of %d (%d total)\n", result.Page+1, result.TotalPages, result.TotalElements)
}

func getIssue(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: taskmanager issue get <issue-id>")
		return
	}

	resp, err := doRequest("GET", "/issues/"+args[0], nil)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		fmt.Printf("✗ Failed: %s\n", readError(resp))
		return
	}

	body, _ := io.ReadAll(resp.Body)
	var pretty bytes.Buffer
	json.Indent(&pretty, body, "", "  ")
	fmt.Println(pretty.String())
}

func createIssue(args []string) {
	fs := flag.NewFlagSet("create", flag.ExitOnError)
	title := fs.String("title", "", "issue title")
	description := fs.String("description", "", "issue description")
	assignee := fs.Int64("assignee", 0, "assignee account id")
	status := fs.String("status", "", "status (BACKLOG, IN_PROGRESS, IN_REVIEW, DONE)")
	priority := fs.String("priority", "", "priority (NO_PRIORITY, LOW, MEDIUM, HIGH)")

	fs.Parse(args)

	if *title == "" {
		fmt.Println("Error: title is required")
		fs.PrintDefaults()
		return
	}

	payload := issuePayload(*title, *description, *assignee, *status, *priority)
	data, _ := json.Marshal(payload)
	resp, err := doRequest("POST", "/issues", bytes.NewReader(data))
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode == 201 {
		var issue map[string]interface{}
		json.NewDecoder(resp.Body).Decode(&issue)
		fmt.Printf("✓ Issue created with id %v\n", issue["id"])
	} else {
		fmt.Printf("✗ Failed: %s\n", readError(resp))
	}
}

func patchIssue(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: taskmanager issue patch <issue-id> [flags]")
		return
	}
	id := args[0]

	fs := flag.NewFlagSet("patch", flag.ExitOnError)
	title := fs.String("title", "", "issue title")
	description := fs.String("description", "", "issue description")
	assignee := fs.Int64("assignee", 0, "assignee account id")
	status := fs.String("status", "", "status (BACKLOG, IN_PROGRESS, IN_REVIEW, DONE)")
	priority := fs.String("priority", "", "priority (NO_PRIORITY, LOW, MEDIUM, HIGH)")

	fs.Parse(args[1:])

	payload := issuePayload(*title, *description, *assignee, *status, *priority)
	if len(payload) == 0 {
		fmt.Println("Error: nothing to patch")
		fs.PrintDefaults()
		return
	}

	data, _ := json.Marshal(payload)
	resp, err := doRequest("PATCH", "/issues/"+id, bytes.NewReader(data))
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode == 200 {
		fmt.Printf("✓ Issue %s updated\n", id)
	} else {
		fmt.Printf("✗ Failed: %s\n", readError(resp))
	}
}

func deleteIssue(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: taskmanager issue delete <issue-id>")
		return
	}

	resp, err := doRequest("DELETE", "/issues/"+args[0], nil)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode == 204 {
		fmt.Printf("✓ Issue %s deleted\n", args[0])
	} else {
		fmt.Printf("✗ Failed: %s\n", readError(resp))
	}
}

// Comment commands
func addComment(args []string) {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	issue := fs.String("issue", "", "issue id")
	content := fs.String("content", "", "comment content")

	fs.Parse(args)

	if *issue == "" || *content == "" {
		fmt.Println("Error: issue and content are required")
		fs.PrintDefaults()
		return
	}

	payload := map[string]string{"content": *content}
	data, _ := json.Marshal(payload)
	resp, err := doRequest("POST", "/issues/"+*issue+"/comments", bytes.NewReader(data))
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode == 201 {
		fmt.Printf("✓ Comment added to issue %s\n", *issue)
	} else {
		fmt.Printf("✗ Failed: %s\n", readError(resp))
	}
}

func listComments(args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	issue := fs.String("issue", "", "issue id")
	page := fs.Int("page", 0, "page number")
	size := fs.Int("size", 10, "page size")

	fs.Parse(args)

	if *issue == "" {
		fmt.Println("Error: issue is required")
		fs.PrintDefaults()
		return
	}

	resp, err := doRequest("GET", fmt.Sprintf("/issues/%s/comments?page=%d&size=%d", *issue, *page, *size), nil)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		fmt.Printf("✗ Failed: %s\n", readError(resp))
		return
	}

	var result pageResult
	json.NewDecoder(resp.Body).Decode(&result)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tAUTHOR\tCONTENT")
	for _, c := range result.Content {
		author := ""
		if a, ok := c["author"].(map[string]interface{}); ok {
			author = fmt.Sprintf("%v", a["email"])
		}
		fmt.Fprintf(w, "%v\t%v\t%v\n", c["id"], author, c["content"])
	}
	w.Flush()
	fmt.Printf("page %d of %d (%d total)\n", result.Page+1, result.TotalPages, result.TotalElements)
}

// Helper functions
type pageResult struct {
	Content       []map[string]interface{} `json:"content"`
	Page          int                      `json:"page"`
	Size          int                      `json:"size"`
	TotalElements int64                    `json:"totalElements"`
	TotalPages    int                      `json:"totalPages"`
}

func issuePayload(title, description string, assignee int64, status, priority string) map[string]interface{} {
	payload := map[string]interface{}{}
	if title != "" {
		payload["title"] = title
	}
	if description != "" {
		payload["description"] = description
	}
	if assignee > 0 {
		payload["idAssignee"] = assignee
	}
	if status != "" {
		payload["currentStatus"] = strings.ToUpper(status)
	}
	if priority != "" {
		payload["priority"] = strings.ToUpper(priority)
	}
	return payload
}

func doRequest(method, path string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequest(method, getAPIURL()+path, body)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	addAuthHeader(req)
	return http.DefaultClient.Do(req)
}

func readError(resp *http.Response) string {
	body, _ := io.ReadAll(resp.Body)
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		return resp.Status
	}
	return msg
}

func getAPIURL() string {
	if url := os.Getenv("TASKMANAGER_API"); url != "" {
		return url
	}
	return "http://localhost:8080"
}

func tokenFile() string {
	home, _ := os.UserHomeDir()
	return home + "/.taskmanager/token"
}

func saveToken(token string) error {
	home, _ := os.UserHomeDir()
	os.MkdirAll(home+"/.taskmanager", 0700)
	return os.WriteFile(tokenFile(), []byte(token), 0600)
}

func loadToken() string {
	data, _ := os.ReadFile(tokenFile())
	return string(data)
}

func addAuthHeader(req *http.Request) {
	token := loadToken()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func printUsage() {
	fmt.Print(`TaskManager CLI

Usage:
  taskmanager <command> [options]

Commands:
  auth     Authentication (register, login, logout, who)
  account  Account operations (list, delete) - admin access required
  issue    Issue operations (list, get, create, patch, delete)
  comment  Comment operations (add, list)
  help     Show this help message

Environment Variables:
  TASKMANAGER_API    API endpoint (default: http://localhost:8080)

Examples:
  taskmanager auth register -email user@example.com -password 'Secret1!'
  taskmanager auth login -email user@example.com -password 'Secret1!'
  taskmanager issue create -title "Fix login" -priority HIGH
  taskmanager comment add -issue 1 -content "On it"
`)
}
