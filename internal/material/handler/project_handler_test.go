package handler

import (
	"net/http"
	"testing"

	"github.com/arkittioe/material-issue-tracker/internal/material/repository"
	"github.com/arkittioe/material-issue-tracker/internal/material/service"
	"github.com/arkittioe/material-issue-tracker/internal/material/testutil"
	"go.uber.org/zap"
)

func setupProjectTest(t *testing.T) *testutil.TestEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)

	repos := repository.NewRepositories(db)
	services, err := service.NewServices(repos, db, zap.NewNop())
	if err != nil {
		t.Fatalf("NewServices: %v", err)
	}
	handlers := NewHandlers(services)

	router := testutil.SetupRouter()
	api := testutil.AuthGroup(router, "/api/v1")
	api.POST("/projects", handlers.Project.Create)
	api.GET("/projects", handlers.Project.List)
	api.POST("/projects/:id/takeoff", handlers.Project.AddItems)
	api.GET("/progress/line", handlers.Consumption.LineProgress)
	api.POST("/mivs", handlers.Consumption.Register)
	api.PUT("/mivs/:id", handlers.Consumption.Edit)

	return &testutil.TestEnv{DB: db, Router: router, T: t}
}

func TestCreateProjectRequiresAuth(t *testing.T) {
	env := setupProjectTest(t)

	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/projects",
		map[string]string{"name": "P-1"}, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status without token = %d, want 401", w.Code)
	}
}

func TestProjectAndMIVFlow(t *testing.T) {
	env := setupProjectTest(t)
	token := testutil.DefaultTestToken()

	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/projects",
		map[string]string{"name": "Unit 12 Piping"}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("create project status = %d, body = %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	projectID := data["id"].(string)
	if projectID == "" {
		t.Fatal("project id missing from response")
	}

	// duplicate name is rejected
	w = testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/projects",
		map[string]string{"name": "Unit 12 Piping"}, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("duplicate project status = %d, want 400", w.Code)
	}

	w = testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/projects/"+projectID+"/takeoff",
		[]map[string]interface{}{
			{"line_no": "L-1", "item_type": "ELBOW 90", "item_code": "E-1", "p1_bore_in": 6, "quantity": 2},
		}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("add takeoff status = %d, body = %s", w.Code, w.Body.String())
	}
	resp = testutil.ParseResponse(w)
	items := resp["data"].([]interface{})
	itemID := items[0].(map[string]interface{})["id"].(string)

	w = testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/mivs",
		map[string]interface{}{
			"project_id": projectID,
			"line_no":    "L-1",
			"miv_tag":    "MIV-H1",
			"items":      []map[string]interface{}{{"take_off_item_id": itemID, "used_qty": 1}},
		}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("register MIV status = %d, body = %s", w.Code, w.Body.String())
	}

	w = testutil.DoRequest(env.Router, http.MethodGet,
		"/api/v1/progress/line?project_id="+projectID+"&line_no=L-1", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("line progress status = %d, body = %s", w.Code, w.Body.String())
	}
	resp = testutil.ParseResponse(w)
	progress := resp["data"].(map[string]interface{})
	rows := progress["items"].([]interface{})
	if len(rows) != 1 {
		t.Fatalf("progress rows = %d, want 1", len(rows))
	}
	row := rows[0].(map[string]interface{})
	if row["used_qty"].(float64) != 1 || row["remaining_qty"].(float64) != 1 {
		t.Fatalf("progress row = %+v, want used 1 remaining 1", row)
	}
}

func TestEditMIVTakesIDFromPath(t *testing.T) {
	env := setupProjectTest(t)
	token := testutil.DefaultTestToken()

	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/projects",
		map[string]string{"name": "Unit 13 Piping"}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("create project status = %d, body = %s", w.Code, w.Body.String())
	}
	projectID := testutil.ParseResponse(w)["data"].(map[string]interface{})["id"].(string)

	w = testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/projects/"+projectID+"/takeoff",
		[]map[string]interface{}{
			{"line_no": "L-2", "item_type": "TEE", "item_code": "T-1", "p1_bore_in": 4, "quantity": 5},
		}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("add takeoff status = %d, body = %s", w.Code, w.Body.String())
	}
	itemID := testutil.ParseResponse(w)["data"].([]interface{})[0].(map[string]interface{})["id"].(string)

	w = testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/mivs",
		map[string]interface{}{
			"project_id": projectID,
			"line_no":    "L-2",
			"miv_tag":    "MIV-E1",
			"items":      []map[string]interface{}{{"take_off_item_id": itemID, "used_qty": 1}},
		}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("register MIV status = %d, body = %s", w.Code, w.Body.String())
	}
	recordID := testutil.ParseResponse(w)["data"].(map[string]interface{})["id"].(string)

	// body carries no miv_record_id: the path parameter is authoritative
	w = testutil.DoRequest(env.Router, http.MethodPut, "/api/v1/mivs/"+recordID,
		map[string]interface{}{
			"items": []map[string]interface{}{{"take_off_item_id": itemID, "used_qty": 3}},
		}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("edit MIV status = %d, body = %s", w.Code, w.Body.String())
	}

	w = testutil.DoRequest(env.Router, http.MethodGet,
		"/api/v1/progress/line?project_id="+projectID+"&line_no=L-2", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("line progress status = %d, body = %s", w.Code, w.Body.String())
	}
	rows := testutil.ParseResponse(w)["data"].(map[string]interface{})["items"].([]interface{})
	if len(rows) != 1 {
		t.Fatalf("progress rows = %d, want 1", len(rows))
	}
	row := rows[0].(map[string]interface{})
	if row["used_qty"].(float64) != 3 || row["remaining_qty"].(float64) != 2 {
		t.Fatalf("progress row after edit = %+v, want used 3 remaining 2", row)
	}
}
