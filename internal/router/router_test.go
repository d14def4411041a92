package router_test

import (
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"paws-and-claws/internal/adapters/auth/token"
	"paws-and-claws/internal/adapters/uploads"
	"paws-and-claws/internal/platform/config"
	"paws-and-claws/internal/ports/auth"
	"paws-and-claws/internal/router"
)

const testSecret = "test-secret"

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	h := router.New(router.Options{
		Config: config.Config{
			SessionSecret: testSecret,
			SessionTTL:    time.Hour,
			WizardTTL:     30 * time.Minute,
		},
		Uploads: uploads.NewMemory(),
	})
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	return ts
}

func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	return &http.Client{Jar: jar}
}

func adminClient(t *testing.T, baseURL string) *http.Client {
	t.Helper()
	c := newClient(t)

	tok, err := token.New(testSecret).Issue(auth.Claims{
		UserID: "admin-1",
		Email:  "staff@example.com",
		Role:   auth.RoleAdmin,
	}, time.Hour)
	if err != nil {
		t.Fatalf("issue admin token: %v", err)
	}

	u, _ := url.Parse(baseURL)
	c.Jar.SetCookies(u, []*http.Cookie{{Name: "pc_session", Value: tok}})
	return c
}

func postForm(t *testing.T, c *http.Client, target string, form url.Values) (int, []byte) {
	t.Helper()
	resp, err := c.PostForm(target, form)
	if err != nil {
		t.Fatalf("POST %s: %v", target, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, body
}

func get(t *testing.T, c *http.Client, target string) (int, []byte) {
	t.Helper()
	resp, err := c.Get(target)
	if err != nil {
		t.Fatalf("GET %s: %v", target, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, body
}

func postMultipart(t *testing.T, c *http.Client, target string, fields map[string]string) (int, []byte) {
	t.Helper()

	var buf strings.Builder
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	_ = w.Close()

	resp, err := c.Post(target, w.FormDataContentType(), strings.NewReader(buf.String()))
	if err != nil {
		t.Fatalf("POST %s: %v", target, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, body
}

func popFlash(t *testing.T, c *http.Client, baseURL string) (success, errMsg string) {
	t.Helper()
	_, body := get(t, c, baseURL+"/flash")
	var out map[string]string
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("flash decode: %v (%s)", err, body)
	}
	return out["success"], out["error"]
}

// registerThroughWizard walks the full four-step flow and leaves the client
// signed in.
func registerThroughWizard(t *testing.T, c *http.Client, baseURL, email string, withPet bool) {
	t.Helper()

	st, body := postForm(t, c, baseURL+"/register", url.Values{
		"email":            {email},
		"password":         {"hunter2hunter2"},
		"confirm_password": {"hunter2hunter2"},
		"first_name":       {"Ana"},
		"last_name":        {"Reyes"},
	})
	if st != http.StatusOK {
		t.Fatalf("step 1: got %d body=%s", st, body)
	}

	if withPet {
		if st, body := postForm(t, c, baseURL+"/register/step2", url.Values{"has_other_pets": {"true"}}); st != http.StatusOK {
			t.Fatalf("step 2: got %d body=%s", st, body)
		}
		if st, body := postForm(t, c, baseURL+"/register/step3", url.Values{
			"action":      {"AddPet"},
			"pet_name":    {"Luna"},
			"pet_species": {"Cat"},
			"pet_age":     {"2"},
		}); st != http.StatusOK {
			t.Fatalf("step 3 add: got %d body=%s", st, body)
		}
		if st, body := postForm(t, c, baseURL+"/register/step3", url.Values{"action": {"Proceed"}}); st != http.StatusOK {
			t.Fatalf("step 3 proceed: got %d body=%s", st, body)
		}
	} else {
		if st, body := postForm(t, c, baseURL+"/register/step2", url.Values{"has_other_pets": {"false"}}); st != http.StatusOK {
			t.Fatalf("step 2: got %d body=%s", st, body)
		}
	}

	if st, body := postForm(t, c, baseURL+"/register/step4", url.Values{
		"address":          {"123 Elm St"},
		"living_situation": {"Apartment"},
	}); st != http.StatusOK {
		t.Fatalf("step 4: got %d body=%s", st, body)
	}
}

func TestHTTP_EndToEnd_AdoptionFlow(t *testing.T) {
	ts := newTestServer(t)
	admin := adminClient(t, ts.URL)

	// 1) Staff lists the pet
	st, _ := postMultipart(t, admin, ts.URL+"/pets", map[string]string{
		"name":    "Milo",
		"species": "Dog",
		"breed":   "Mixed",
		"age":     "3",
		"gender":  "Male",
	})
	if st != http.StatusOK {
		t.Fatalf("add pet: got %d", st)
	}
	if success, _ := popFlash(t, admin, ts.URL); success != "Pet added successfully!" {
		t.Fatalf("unexpected flash %q", success)
	}

	_, body := get(t, admin, ts.URL+"/pets")
	var cards []struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	if err := json.Unmarshal(body, &cards); err != nil || len(cards) != 1 {
		t.Fatalf("pet list: err=%v body=%s", err, body)
	}
	petID := cards[0].ID
	if cards[0].Status != "Available" {
		t.Fatalf("new pet should be Available, got %s", cards[0].Status)
	}

	// 2) First applicant registers through the wizard and owns a pet already
	ana := newClient(t)
	registerThroughWizard(t, ana, ts.URL, "ana@example.com", true)

	if success, _ := popFlash(t, ana, ts.URL); !strings.Contains(success, "Welcome") {
		t.Fatalf("expected welcome flash, got %q", success)
	}

	_, body = get(t, ana, ts.URL+"/me")
	var profile struct {
		FirstName       string `json:"first_name"`
		CurrentPetCount int    `json:"current_pet_count"`
	}
	if err := json.Unmarshal(body, &profile); err != nil {
		t.Fatalf("profile: %v (%s)", err, body)
	}
	if profile.FirstName != "Ana" || profile.CurrentPetCount != 1 {
		t.Fatalf("unexpected profile: %+v", profile)
	}

	// 3) Too-short motivation is rejected with a flash
	if st, _ := postForm(t, ana, ts.URL+"/adoptions", url.Values{
		"pet_id":  {petID},
		"message": {"too short"},
	}); st != http.StatusOK {
		t.Fatalf("short submit: got %d", st)
	}
	if _, errMsg := popFlash(t, ana, ts.URL); !strings.Contains(errMsg, "at least 20 characters") {
		t.Fatalf("expected length flash, got %q", errMsg)
	}

	// 4) A proper application lands in REVIEW
	if st, _ := postForm(t, ana, ts.URL+"/adoptions", url.Values{
		"pet_id":  {petID},
		"message": {"We have a quiet home and a fenced garden for Milo."},
	}); st != http.StatusOK {
		t.Fatalf("submit: got %d", st)
	}

	_, body = get(t, ana, ts.URL+"/adoptions")
	var page struct {
		Applications []struct {
			ID          string `json:"id"`
			Status      string `json:"status"`
			CurrentStep int    `json:"current_step"`
		} `json:"applications"`
		StatusCounts map[string]int `json:"status_counts"`
	}
	if err := json.Unmarshal(body, &page); err != nil {
		t.Fatalf("my applications: %v (%s)", err, body)
	}
	if len(page.Applications) != 1 || page.Applications[0].Status != "REVIEW" {
		t.Fatalf("unexpected applications: %s", body)
	}
	if page.Applications[0].CurrentStep != 1 {
		t.Fatalf("REVIEW should render at step 1, got %d", page.Applications[0].CurrentStep)
	}
	appID := page.Applications[0].ID

	// 5) Approval reserves the pet
	if st, _ := postForm(t, admin, ts.URL+"/admin/applications/"+appID+"/status", url.Values{
		"status":       {"APPROVED"},
		"current_step": {"3"},
	}); st != http.StatusOK {
		t.Fatalf("approve: got %d", st)
	}

	_, body = get(t, ana, ts.URL+"/pets/"+petID)
	var card struct {
		Status string `json:"status"`
	}
	_ = json.Unmarshal(body, &card)
	if card.Status != "Pending" {
		t.Fatalf("expected pet Pending after approval, got %s", card.Status)
	}

	// 6) A second applicant is blocked while the pet is reserved
	ben := newClient(t)
	registerThroughWizard(t, ben, ts.URL, "ben@example.com", false)
	_, _ = popFlash(t, ben, ts.URL)

	if st, _ := postForm(t, ben, ts.URL+"/adoptions", url.Values{
		"pet_id":  {petID},
		"message": {"I would also love to adopt Milo, big yard here."},
	}); st != http.StatusOK {
		t.Fatalf("blocked submit: got %d", st)
	}
	if _, errMsg := popFlash(t, ben, ts.URL); !strings.Contains(errMsg, "unavailable") {
		t.Fatalf("expected unavailable flash, got %q", errMsg)
	}

	// 7) Finalizing the adoption
	if st, _ := postForm(t, admin, ts.URL+"/admin/applications/"+appID+"/status", url.Values{
		"status":       {"ADOPTED"},
		"current_step": {"4"},
	}); st != http.StatusOK {
		t.Fatalf("adopt: got %d", st)
	}

	_, body = get(t, ana, ts.URL+"/pets/"+petID)
	_ = json.Unmarshal(body, &card)
	if card.Status != "Adopted" {
		t.Fatalf("expected pet Adopted, got %s", card.Status)
	}

	// 8) Admin console sees both the stored step and the applicant
	_, body = get(t, admin, ts.URL+"/admin/applications")
	var console struct {
		Applications []struct {
			ApplicantName string `json:"applicant_name"`
			CurrentStep   int    `json:"current_step"`
			Status        string `json:"status"`
		} `json:"applications"`
	}
	if err := json.Unmarshal(body, &console); err != nil {
		t.Fatalf("console: %v (%s)", err, body)
	}
	if len(console.Applications) != 1 || console.Applications[0].Status != "ADOPTED" {
		t.Fatalf("unexpected console rows: %s", body)
	}
	if console.Applications[0].CurrentStep != 4 {
		t.Fatalf("console should show the stored step, got %d", console.Applications[0].CurrentStep)
	}
	if console.Applications[0].ApplicantName != "Ana Reyes" {
		t.Fatalf("unexpected applicant name %q", console.Applications[0].ApplicantName)
	}
}

func TestHTTP_CancelAndResubmit(t *testing.T) {
	ts := newTestServer(t)
	admin := adminClient(t, ts.URL)

	st, _ := postMultipart(t, admin, ts.URL+"/pets", map[string]string{
		"name":    "Nala",
		"species": "Cat",
	})
	if st != http.StatusOK {
		t.Fatalf("add pet: got %d", st)
	}
	_, body := get(t, admin, ts.URL+"/pets")
	var cards []struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(body, &cards)
	petID := cards[0].ID

	ana := newClient(t)
	registerThroughWizard(t, ana, ts.URL, "ana@example.com", false)
	_, _ = popFlash(t, ana, ts.URL)

	submit := func() {
		if st, _ := postForm(t, ana, ts.URL+"/adoptions", url.Values{
			"pet_id":  {petID},
			"message": {"Nala would fit right in with our quiet household."},
		}); st != http.StatusOK {
			t.Fatalf("submit: got %d", st)
		}
	}

	submit()
	_, body = get(t, ana, ts.URL+"/adoptions")
	var page struct {
		Applications []struct {
			ID string `json:"id"`
		} `json:"applications"`
	}
	_ = json.Unmarshal(body, &page)
	if len(page.Applications) != 1 {
		t.Fatalf("expected 1 application, got %s", body)
	}
	appID := page.Applications[0].ID

	// duplicate submit conflicts
	submit()
	if _, errMsg := popFlash(t, ana, ts.URL); !strings.Contains(errMsg, "already submitted") {
		t.Fatalf("expected duplicate flash, got %q", errMsg)
	}

	// cancel, then resubmit reuses the same row
	resp, err := ana.Post(ts.URL+"/adoptions/"+appID+"/cancel", "application/x-www-form-urlencoded", nil)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("cancel: got %d", resp.StatusCode)
	}

	submit()
	_, body = get(t, ana, ts.URL+"/adoptions")
	_ = json.Unmarshal(body, &page)
	if len(page.Applications) != 1 || page.Applications[0].ID != appID {
		t.Fatalf("resubmit should reuse the cancelled row: %s", body)
	}
}

func TestHTTP_AdminGuards(t *testing.T) {
	ts := newTestServer(t)

	// anonymous
	resp, err := http.Get(ts.URL + "/admin/applications")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for anonymous, got %d", resp.StatusCode)
	}

	// signed-in non-admin
	ana := newClient(t)
	registerThroughWizard(t, ana, ts.URL, "ana@example.com", false)
	st, _ := get(t, ana, ts.URL+"/admin/applications")
	if st != http.StatusForbidden {
		t.Fatalf("expected 403 for regular user, got %d", st)
	}
}

func TestHTTP_WizardValidation(t *testing.T) {
	ts := newTestServer(t)
	c := newClient(t)

	// mismatched confirmation never advances past step 1
	st, body := postForm(t, c, ts.URL+"/register", url.Values{
		"email":            {"ana@example.com"},
		"password":         {"hunter2hunter2"},
		"confirm_password": {"completely-different-9"},
		"first_name":       {"Ana"},
		"last_name":        {"Reyes"},
	})
	if st != http.StatusBadRequest {
		t.Fatalf("mismatched confirmation: got %d body=%s", st, body)
	}
	var out struct {
		Errors map[string]string `json:"errors"`
	}
	if err := json.Unmarshal(body, &out); err != nil || out.Errors["confirm_password"] == "" {
		t.Fatalf("expected confirm_password error, got %s", body)
	}

	// with matching passwords the flow proceeds to step 4
	if st, body := postForm(t, c, ts.URL+"/register", url.Values{
		"email":            {"ana@example.com"},
		"password":         {"hunter2hunter2"},
		"confirm_password": {"hunter2hunter2"},
		"first_name":       {"Ana"},
		"last_name":        {"Reyes"},
	}); st != http.StatusOK {
		t.Fatalf("step 1: got %d body=%s", st, body)
	}
	if st, body := postForm(t, c, ts.URL+"/register/step2", url.Values{"has_other_pets": {"false"}}); st != http.StatusOK {
		t.Fatalf("step 2: got %d body=%s", st, body)
	}

	// an empty address does not commit the account
	st, body = postForm(t, c, ts.URL+"/register/step4", url.Values{
		"address":          {""},
		"living_situation": {"Apartment"},
	})
	if st != http.StatusBadRequest {
		t.Fatalf("empty address: got %d body=%s", st, body)
	}
	if err := json.Unmarshal(body, &out); err != nil || out.Errors["address"] == "" {
		t.Fatalf("expected address error, got %s", body)
	}

	// the typed living situation survives the failed attempt
	_, body = get(t, c, ts.URL+"/register/step4")
	var step4 struct {
		LivingSituation string `json:"living_situation"`
	}
	if err := json.Unmarshal(body, &step4); err != nil || step4.LivingSituation != "Apartment" {
		t.Fatalf("partial step 4 data lost: %s", body)
	}

	// retrying with an address commits and signs in
	if st, body := postForm(t, c, ts.URL+"/register/step4", url.Values{
		"address": {"9 Oak Ave"},
	}); st != http.StatusOK {
		t.Fatalf("retry: got %d body=%s", st, body)
	}
	_, body = get(t, c, ts.URL+"/me")
	var profile struct {
		Address string `json:"address"`
	}
	if err := json.Unmarshal(body, &profile); err != nil || profile.Address != "9 Oak Ave" {
		t.Fatalf("expected committed address, got %s", body)
	}
}

func TestHTTP_WizardStep3UnknownActionRedisplays(t *testing.T) {
	ts := newTestServer(t)
	c := newClient(t)
	registerStep1And2(t, c, ts.URL)

	for _, action := range []string{"Dance", ""} {
		resp, err := c.PostForm(ts.URL+"/register/step3", url.Values{"action": {action}})
		if err != nil {
			t.Fatalf("post action %q: %v", action, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("action %q: got %d", action, resp.StatusCode)
		}
		if got := resp.Request.URL.Path; got != "/register/step3" {
			t.Fatalf("action %q should redisplay step 3, landed on %s", action, got)
		}
	}
}

func registerStep1And2(t *testing.T, c *http.Client, baseURL string) {
	t.Helper()
	if st, body := postForm(t, c, baseURL+"/register", url.Values{
		"email":            {"ana@example.com"},
		"password":         {"hunter2hunter2"},
		"confirm_password": {"hunter2hunter2"},
		"first_name":       {"Ana"},
		"last_name":        {"Reyes"},
	}); st != http.StatusOK {
		t.Fatalf("step 1: got %d body=%s", st, body)
	}
	if st, body := postForm(t, c, baseURL+"/register/step2", url.Values{"has_other_pets": {"true"}}); st != http.StatusOK {
		t.Fatalf("step 2: got %d body=%s", st, body)
	}
}

func TestHTTP_WizardExpiryRestarts(t *testing.T) {
	ts := newTestServer(t)

	c := newClient(t)
	// jumping straight to step 4 without step 1 bounces to the start
	resp, err := c.Get(ts.URL + "/register/step4")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if got := resp.Request.URL.Path; got != "/register" {
		t.Fatalf("expected redirect to /register, got %s", got)
	}
}
