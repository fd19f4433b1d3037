package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"rental-server/auth"
	"rental-server/cache"
	"rental-server/confs"
	"rental-server/db"
	"rental-server/entities"
	"rental-server/events"
)

const adminEmail = "admin@airbnbbm.com"

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type testEnv struct {
	t       *testing.T
	cfg     *confs.Config
	db      db.Database
	handler http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	cfg := &confs.Config{
		Port:             "0",
		Env:              "test",
		DBDriver:         "sqlite",
		SQLitePath:       "file:" + name + "?mode=memory&cache=shared",
		JWTSecret:        "test-secret",
		TokenTTL:         time.Hour,
		AdminEmail:       adminEmail,
		PropertyCacheTTL: time.Minute,
	}
	database, err := db.Connect(cfg)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	s := NewServer(cfg, database, cache.NewMemoryCache(cfg.PropertyCacheTTL), events.NewBus())
	return &testEnv{t: t, cfg: cfg, db: database, handler: s.Handler()}
}

type response struct {
	Code int
	Body map[string]interface{}
	Raw  string
}

func (e *testEnv) do(method, path, token string, body interface{}) response {
	e.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			e.t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)

	res := response{Code: rec.Code, Raw: rec.Body.String()}
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &res.Body); err != nil {
			e.t.Fatalf("%s %s: decode %q: %v", method, path, rec.Body.String(), err)
		}
	}
	return res
}

func (e *testEnv) expect(res response, code int) response {
	e.t.Helper()
	if res.Code != code {
		e.t.Fatalf("status = %d, want %d; body %s", res.Code, code, res.Raw)
	}
	return res
}

func (e *testEnv) register(email string) (token, userID string) {
	e.t.Helper()
	res := e.expect(e.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": email, "password": "password123", "firstName": "Ann", "lastName": "Lee",
	}), http.StatusCreated)
	return res.Body["token"].(string), obj(res.Body, "user")["id"].(string)
}

func (e *testEnv) login(email, password string) response {
	e.t.Helper()
	return e.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": email, "password": password})
}

func (e *testEnv) createProperty(adminToken, title string) string {
	e.t.Helper()
	res := e.expect(e.do(http.MethodPost, "/api/properties", adminToken, map[string]interface{}{
		"title":         title,
		"description":   "Bright apartment",
		"location":      "Porto",
		"pricePerNight": "150",
		"maxGuests":     4,
		"bedrooms":      2,
		"bathrooms":     1,
		"amenities":     []string{"wifi"},
	}), http.StatusCreated)
	return obj(res.Body, "property")["id"].(string)
}

func (e *testEnv) createBooking(token, propertyID string) string {
	e.t.Helper()
	res := e.expect(e.do(http.MethodPost, "/api/bookings", token, map[string]interface{}{
		"propertyId": propertyID, "checkIn": "2025-09-01", "checkOut": "2025-09-03", "guests": 2,
	}), http.StatusCreated)
	return obj(res.Body, "booking")["id"].(string)
}

func obj(m map[string]interface{}, key string) map[string]interface{} {
	v, _ := m[key].(map[string]interface{})
	return v
}

func list(m map[string]interface{}, key string) []interface{} {
	v, _ := m[key].([]interface{})
	return v
}

func titles(items []interface{}) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.(map[string]interface{})["title"].(string))
	}
	return out
}

func TestHealth(t *testing.T) {
	e := newTestEnv(t)
	for _, path := range []string{"/health", "/api/health"} {
		res := e.expect(e.do(http.MethodGet, path, "", nil), http.StatusOK)
		if res.Body["status"] != "ok" {
			t.Errorf("%s body = %v", path, res.Body)
		}
	}
}

func TestBookAndPayScenario(t *testing.T) {
	e := newTestEnv(t)
	adminToken, _ := e.register(adminEmail)
	e.register("a@x.com")

	login := e.expect(e.login("a@x.com", "password123"), http.StatusOK)
	token := login.Body["token"].(string)
	if _, leaked := obj(login.Body, "user")["password"]; leaked {
		t.Fatal("password serialized")
	}

	propertyID := e.createProperty(adminToken, "Riverside Loft")
	bookingID := e.createBooking(token, propertyID)

	pay := e.expect(e.do(http.MethodPost, "/api/payments", token, map[string]interface{}{
		"bookingId": bookingID, "amount": 300,
	}), http.StatusCreated)
	if obj(pay.Body, "payment")["status"] != entities.PaymentCompleted {
		t.Errorf("payment = %v", pay.Body)
	}

	booking := e.expect(e.do(http.MethodGet, "/api/bookings/"+bookingID, token, nil), http.StatusOK)
	if obj(booking.Body, "booking")["status"] != entities.BookingConfirmed {
		t.Errorf("booking = %v", booking.Body)
	}

	notes := e.expect(e.do(http.MethodGet, "/api/notifications", token, nil), http.StatusOK)
	got := titles(list(notes.Body, "notifications"))
	want := []string{"Payment processed", "Booking confirmed!", "Welcome back!", "Welcome to AIRBNBBM!"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("notifications = %v, want %v", got, want)
	}
}

func TestBookAndPayWithoutLoginHasThreeNotifications(t *testing.T) {
	e := newTestEnv(t)
	adminToken, _ := e.register(adminEmail)
	token, _ := e.register("a@x.com")

	propertyID := e.createProperty(adminToken, "Loft")
	bookingID := e.createBooking(token, propertyID)
	e.expect(e.do(http.MethodPost, "/api/payments", token, map[string]interface{}{
		"bookingId": bookingID, "amount": "300",
	}), http.StatusCreated)

	notes := e.expect(e.do(http.MethodGet, "/api/notifications", token, nil), http.StatusOK)
	if got := titles(list(notes.Body, "notifications")); len(got) != 3 {
		t.Errorf("notifications = %v, want 3", got)
	}
}

func TestRegisterConflictAndValidation(t *testing.T) {
	e := newTestEnv(t)
	e.register("a@x.com")

	dup := e.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": "a@x.com", "password": "x", "firstName": "B", "lastName": "C",
	})
	e.expect(dup, http.StatusBadRequest)
	if dup.Body["message"] != "User already exists" {
		t.Errorf("dup body = %v", dup.Body)
	}

	bad := e.expect(e.do(http.MethodPost, "/api/auth/register", "", map[string]string{"email": "nope"}), http.StatusBadRequest)
	details := obj(bad.Body, "details")
	for _, field := range []string{"email", "password", "firstName", "lastName"} {
		if _, ok := details[field]; !ok {
			t.Errorf("details missing %s: %v", field, details)
		}
	}
}

func TestLoginFailuresLookTheSame(t *testing.T) {
	e := newTestEnv(t)
	e.register("a@x.com")

	wrong := e.login("a@x.com", "wrong")
	unknown := e.login("ghost@x.com", "wrong")
	if wrong.Code != http.StatusUnauthorized || unknown.Code != http.StatusUnauthorized {
		t.Fatalf("codes = %d, %d", wrong.Code, unknown.Code)
	}
	if wrong.Raw != unknown.Raw {
		t.Errorf("bodies differ: %s vs %s", wrong.Raw, unknown.Raw)
	}
}

func TestTokenChecks(t *testing.T) {
	e := newTestEnv(t)
	token, userID := e.register("a@x.com")

	me := e.expect(e.do(http.MethodGet, "/api/auth/me", token, nil), http.StatusOK)
	if obj(me.Body, "user")["id"] != userID {
		t.Errorf("me = %v", me.Body)
	}

	expired, err := auth.NewTokenManager(e.cfg.JWTSecret, -time.Minute).Issue(userID, "a@x.com", "guest")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	forged, _ := auth.NewTokenManager("not-the-secret", time.Hour).Issue(userID, "a@x.com", "guest")

	cases := []struct {
		name  string
		token string
		code  int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"expired", expired, http.StatusForbidden},
		{"forged", forged, http.StatusForbidden},
		{"tampered", token[:len(token)-3] + "abc", http.StatusForbidden},
	}
	for _, tc := range cases {
		for _, path := range []string{"/api/auth/me", "/api/bookings", "/api/notifications", "/api/payments"} {
			res := e.do(http.MethodGet, path, tc.token, nil)
			if res.Code != tc.code {
				t.Errorf("%s %s: status = %d, want %d", tc.name, path, res.Code, tc.code)
			}
			if _, ok := res.Body["message"]; !ok {
				t.Errorf("%s %s: body without message: %s", tc.name, path, res.Raw)
			}
		}
	}
}

func TestMeForDeletedUser(t *testing.T) {
	e := newTestEnv(t)
	token, userID := e.register("a@x.com")
	if err := e.db.GetDB().Delete(&entities.User{}, "id = ?", userID).Error; err != nil {
		t.Fatalf("delete user: %v", err)
	}
	e.expect(e.do(http.MethodGet, "/api/auth/me", token, nil), http.StatusNotFound)
}

func TestPropertyAdminGuard(t *testing.T) {
	e := newTestEnv(t)
	guestToken, _ := e.register("a@x.com")
	body := map[string]interface{}{"title": "x"}

	e.expect(e.do(http.MethodPost, "/api/properties", "", body), http.StatusUnauthorized)
	e.expect(e.do(http.MethodPost, "/api/properties", guestToken, body), http.StatusForbidden)
	e.expect(e.do(http.MethodPut, "/api/properties/any", guestToken, body), http.StatusForbidden)
	e.expect(e.do(http.MethodDelete, "/api/properties/any", guestToken, nil), http.StatusForbidden)
	e.expect(e.do(http.MethodGet, "/api/cache/stats", guestToken, nil), http.StatusForbidden)
}

func TestPropertyLifecycle(t *testing.T) {
	e := newTestEnv(t)
	adminToken, adminID := e.register(adminEmail)

	e.expect(e.do(http.MethodPost, "/api/properties", adminToken, map[string]interface{}{"title": "Only a title"}), http.StatusBadRequest)

	id := e.createProperty(adminToken, "Harbour House")
	other := e.createProperty(adminToken, "Hill Cabin")

	got := e.expect(e.do(http.MethodGet, "/api/properties/"+id, "", nil), http.StatusOK)
	p := obj(got.Body, "property")
	if p["hostId"] != adminID || p["isActive"] != true || p["rating"] != "0" {
		t.Errorf("property = %v", p)
	}

	upd := e.expect(e.do(http.MethodPut, "/api/properties/"+id, adminToken, map[string]interface{}{
		"pricePerNight": 175, "hostId": "someone-else",
	}), http.StatusOK)
	if up := obj(upd.Body, "property"); up["pricePerNight"] != "175" || up["hostId"] != adminID {
		t.Errorf("updated = %v", up)
	}

	del := e.expect(e.do(http.MethodDelete, "/api/properties/"+id, adminToken, nil), http.StatusOK)
	if del.Body["message"] != "Property deleted successfully" || obj(del.Body, "property")["isActive"] != false {
		t.Errorf("delete body = %v", del.Body)
	}
	e.expect(e.do(http.MethodDelete, "/api/properties/"+id, adminToken, nil), http.StatusNotFound)

	listing := e.expect(e.do(http.MethodGet, "/api/properties", "", nil), http.StatusOK)
	props := list(listing.Body, "properties")
	if len(props) != 1 || props[0].(map[string]interface{})["id"] != other {
		t.Errorf("listing = %v", props)
	}
	after := e.expect(e.do(http.MethodGet, "/api/properties/"+id, "", nil), http.StatusOK)
	if obj(after.Body, "property")["isActive"] != false {
		t.Errorf("direct lookup = %v", after.Body)
	}

	e.expect(e.do(http.MethodGet, "/api/properties/missing", "", nil), http.StatusNotFound)
	e.expect(e.do(http.MethodGet, "/api/properties?limit=abc&offset=-4", "", nil), http.StatusOK)

	stats := e.expect(e.do(http.MethodGet, "/api/cache/stats", adminToken, nil), http.StatusOK)
	if obj(stats.Body, "stats")["backend"] != "memory" {
		t.Errorf("stats = %v", stats.Body)
	}

	e.expect(e.do(http.MethodDelete, "/api/cache", "", nil), http.StatusUnauthorized)
	cleared := e.expect(e.do(http.MethodDelete, "/api/cache", adminToken, nil), http.StatusOK)
	if cleared.Body["status"] != "cleared" {
		t.Errorf("clear = %v", cleared.Body)
	}
	stats = e.expect(e.do(http.MethodGet, "/api/cache/stats", adminToken, nil), http.StatusOK)
	if st := obj(stats.Body, "stats"); st["entries"] != float64(0) || st["hits"] != float64(0) {
		t.Errorf("stats after clear = %v", st)
	}
}

func TestBookingForMissingPropertyCreatesNothing(t *testing.T) {
	e := newTestEnv(t)
	token, _ := e.register("a@x.com")

	e.expect(e.do(http.MethodPost, "/api/bookings", token, map[string]interface{}{
		"propertyId": "nope", "checkIn": "2025-09-01", "checkOut": "2025-09-03", "guests": 1,
	}), http.StatusNotFound)

	var n int64
	e.db.GetDB().Model(&entities.Booking{}).Count(&n)
	if n != 0 {
		t.Errorf("bookings = %d, want 0", n)
	}
}

func TestBookingsAreOwnerScoped(t *testing.T) {
	e := newTestEnv(t)
	adminToken, _ := e.register(adminEmail)
	ownerToken, _ := e.register("a@x.com")
	otherToken, _ := e.register("b@x.com")
	bookingID := e.createBooking(ownerToken, e.createProperty(adminToken, "Loft"))

	e.expect(e.do(http.MethodGet, "/api/bookings/"+bookingID, otherToken, nil), http.StatusNotFound)
	e.expect(e.do(http.MethodPatch, "/api/bookings/"+bookingID+"/cancel", otherToken, nil), http.StatusNotFound)
	e.expect(e.do(http.MethodGet, "/api/payments/booking/"+bookingID, otherToken, nil), http.StatusNotFound)
	e.expect(e.do(http.MethodPost, "/api/payments", otherToken, map[string]interface{}{
		"bookingId": bookingID, "amount": 10,
	}), http.StatusNotFound)

	mine := e.expect(e.do(http.MethodGet, "/api/bookings", ownerToken, nil), http.StatusOK)
	if len(list(mine.Body, "bookings")) != 1 {
		t.Errorf("owner bookings = %v", mine.Body)
	}
	theirs := e.expect(e.do(http.MethodGet, "/api/bookings", otherToken, nil), http.StatusOK)
	if len(list(theirs.Body, "bookings")) != 0 {
		t.Errorf("other bookings = %v", theirs.Body)
	}
}

func TestCancelThenPayConflicts(t *testing.T) {
	e := newTestEnv(t)
	adminToken, _ := e.register(adminEmail)
	token, _ := e.register("a@x.com")
	bookingID := e.createBooking(token, e.createProperty(adminToken, "Loft"))

	for i := 0; i < 2; i++ {
		res := e.expect(e.do(http.MethodPatch, "/api/bookings/"+bookingID+"/cancel", token, nil), http.StatusOK)
		if obj(res.Body, "booking")["status"] != entities.BookingCancelled {
			t.Errorf("cancel #%d = %v", i+1, res.Body)
		}
	}
	e.expect(e.do(http.MethodPost, "/api/payments", token, map[string]interface{}{
		"bookingId": bookingID, "amount": 10,
	}), http.StatusConflict)
	e.expect(e.do(http.MethodPut, "/api/bookings/"+bookingID, token, map[string]interface{}{
		"guests": 3,
	}), http.StatusConflict)
}

func TestGuestCannotConfirmOrReopenBooking(t *testing.T) {
	e := newTestEnv(t)
	adminToken, _ := e.register(adminEmail)
	token, _ := e.register("a@x.com")
	bookingID := e.createBooking(token, e.createProperty(adminToken, "Loft"))

	e.expect(e.do(http.MethodPut, "/api/bookings/"+bookingID, token, map[string]interface{}{
		"status": "confirmed",
	}), http.StatusBadRequest)

	var payments int64
	e.db.GetDB().Model(&entities.Payment{}).Where("booking_id = ?", bookingID).Count(&payments)
	if payments != 0 {
		t.Fatalf("payments = %d, want 0", payments)
	}

	e.expect(e.do(http.MethodPost, "/api/payments", token, map[string]interface{}{
		"bookingId": bookingID, "amount": 300,
	}), http.StatusCreated)
	e.expect(e.do(http.MethodPut, "/api/bookings/"+bookingID, token, map[string]interface{}{
		"status": "pending",
	}), http.StatusBadRequest)

	res := e.expect(e.do(http.MethodGet, "/api/bookings/"+bookingID, token, nil), http.StatusOK)
	if obj(res.Body, "booking")["status"] != entities.BookingConfirmed {
		t.Errorf("booking = %v", res.Body)
	}
}

func TestPaymentRoutes(t *testing.T) {
	e := newTestEnv(t)
	adminToken, _ := e.register(adminEmail)
	token, _ := e.register("a@x.com")
	bookingID := e.createBooking(token, e.createProperty(adminToken, "Loft"))

	e.expect(e.do(http.MethodPost, "/api/payments", token, map[string]interface{}{"bookingId": bookingID}), http.StatusBadRequest)

	created := e.expect(e.do(http.MethodPost, "/api/payments", token, map[string]interface{}{
		"bookingId": bookingID, "amount": "300", "paymentMethod": "paypal",
	}), http.StatusCreated)
	paymentID := obj(created.Body, "payment")["id"].(string)

	all := e.expect(e.do(http.MethodGet, "/api/payments", token, nil), http.StatusOK)
	if len(list(all.Body, "payments")) != 1 {
		t.Errorf("payments = %v", all.Body)
	}
	byBooking := e.expect(e.do(http.MethodGet, "/api/payments/booking/"+bookingID, token, nil), http.StatusOK)
	if len(list(byBooking.Body, "payments")) != 1 {
		t.Errorf("by booking = %v", byBooking.Body)
	}
	one := e.expect(e.do(http.MethodGet, "/api/payments/"+paymentID, token, nil), http.StatusOK)
	if obj(one.Body, "payment")["paymentMethod"] != "paypal" {
		t.Errorf("payment = %v", one.Body)
	}

	e.expect(e.do(http.MethodPatch, "/api/payments/"+paymentID+"/status", token, map[string]string{"status": "bogus"}), http.StatusBadRequest)

	refund := e.expect(e.do(http.MethodPatch, "/api/payments/"+paymentID+"/refund", token, nil), http.StatusOK)
	if p := obj(refund.Body, "payment"); p["status"] != entities.PaymentRefunded || p["refundedAt"] == nil {
		t.Errorf("refund = %v", p)
	}
	e.expect(e.do(http.MethodPatch, "/api/payments/"+paymentID+"/refund", token, nil), http.StatusConflict)

	booking := e.expect(e.do(http.MethodGet, "/api/bookings/"+bookingID, token, nil), http.StatusOK)
	if obj(booking.Body, "booking")["status"] != entities.BookingConfirmed {
		t.Errorf("booking after refund = %v", booking.Body)
	}
}

func TestNotificationRoutes(t *testing.T) {
	e := newTestEnv(t)
	token, _ := e.register("a@x.com")
	otherToken, _ := e.register("b@x.com")

	created := e.expect(e.do(http.MethodPost, "/api/notifications", token, map[string]string{
		"title": "Reminder", "message": "Pack your bags",
	}), http.StatusCreated)
	id := obj(created.Body, "notification")["id"].(string)
	if obj(created.Body, "notification")["type"] != entities.NotificationOther {
		t.Errorf("created = %v", created.Body)
	}

	e.expect(e.do(http.MethodPost, "/api/notifications", token, map[string]string{
		"title": "x", "message": "y", "type": "spam",
	}), http.StatusBadRequest)

	for i := 0; i < 2; i++ {
		res := e.expect(e.do(http.MethodPatch, "/api/notifications/"+id+"/read", token, nil), http.StatusOK)
		if res.Body["message"] != "Notification marked as read" {
			t.Errorf("mark read #%d = %v", i+1, res.Body)
		}
	}
	e.expect(e.do(http.MethodPatch, "/api/notifications/"+id+"/read", otherToken, nil), http.StatusNotFound)
	e.expect(e.do(http.MethodPatch, "/api/notifications/missing/read", token, nil), http.StatusNotFound)

	e.expect(e.do(http.MethodDelete, "/api/notifications/"+id, otherToken, nil), http.StatusNotFound)
	e.expect(e.do(http.MethodDelete, "/api/notifications/"+id, token, nil), http.StatusOK)
	e.expect(e.do(http.MethodDelete, "/api/notifications/"+id, token, nil), http.StatusNotFound)
}

func TestWebsocketPushesNewNotifications(t *testing.T) {
	e := newTestEnv(t)
	adminToken, _ := e.register(adminEmail)
	token, userID := e.register("a@x.com")

	srv := httptest.NewServer(e.handler)
	defer srv.Close()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token="

	if _, resp, err := websocket.DefaultDialer.Dial(wsURL+"bad", nil); err == nil || resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Fatalf("bad token dial: err=%v resp=%v", err, resp)
	}
	if _, resp, err := websocket.DefaultDialer.Dial(wsURL, nil); err == nil || resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("missing token dial: err=%v resp=%v", err, resp)
	}

	conn, _, err := websocket.DefaultDialer.Dial(wsURL+token, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// registration happens after the upgrade response is written
	deadline := time.Now().Add(2 * time.Second)
	for {
		res := e.expect(e.do(http.MethodGet, "/api/ws/connected", adminToken, nil), http.StatusOK)
		if obj(res.Body, "users")[userID] != nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("connection never registered: %v", res.Body)
		}
		time.Sleep(10 * time.Millisecond)
	}

	e.expect(e.do(http.MethodPost, "/api/notifications", token, map[string]string{"title": "Live", "message": "hi"}), http.StatusCreated)

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg struct {
		Type         string `json:"type"`
		Notification struct {
			Title string `json:"title"`
		} `json:"notification"`
	}
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	if msg.Type != "notification" || msg.Notification.Title != "Live" {
		t.Errorf("message = %+v", msg)
	}

	if err := conn.WriteJSON(map[string]string{"type": "ping"}); err != nil {
		t.Fatalf("ping: %v", err)
	}
	var pong struct {
		Type string `json:"type"`
	}
	if err := conn.ReadJSON(&pong); err != nil || pong.Type != "pong" {
		t.Errorf("pong = %+v, err %v", pong, err)
	}
}
