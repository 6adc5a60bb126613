package tests

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// apiClient là HTTP client tối giản cho test end-to-end: giữ base URL,
// bearer token và organization header giữa các request.
type apiClient struct {
	baseURL string
	token   string
	orgID   string
	http    *http.Client
}

func newAPIClient(baseURL string) *apiClient {
	return &apiClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *apiClient) do(method, path string, payload interface{}) (*http.Response, map[string]interface{}, error) {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, nil, err
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, c.baseURL+path, body)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.orgID != "" {
		req.Header.Set("X-Organization-ID", c.orgID)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp, nil, err
	}
	var parsed map[string]interface{}
	if len(raw) > 0 {
		json.Unmarshal(raw, &parsed)
	}
	return resp, parsed, nil
}

func (c *apiClient) GET(path string) (*http.Response, map[string]interface{}, error) {
	return c.do(http.MethodGet, path, nil)
}

func (c *apiClient) POST(path string, payload interface{}) (*http.Response, map[string]interface{}, error) {
	return c.do(http.MethodPost, path, payload)
}

// dataField lấy field con trong result["data"].
func dataField(result map[string]interface{}, key string) interface{} {
	data, ok := result["data"].(map[string]interface{})
	if !ok {
		return nil
	}
	return data[key]
}

// waitForHealth chờ server sẵn sàng, skip toàn bộ test nếu không kết nối được.
func waitForHealth(baseURL string, attempts int, delay time.Duration, t *testing.T) {
	client := &http.Client{Timeout: 2 * time.Second}
	for i := 0; i < attempts; i++ {
		resp, err := client.Get(baseURL + "/system/health")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(delay)
	}
	t.Skipf("⚠️ Server không sẵn sàng tại %s, bỏ qua test end-to-end", baseURL)
}

// TestWorkflowModule kiểm tra vòng đời đầy đủ của workflow automation:
// đăng ký user, tạo organization, tạo contact, tạo + kích hoạt workflow,
// enroll thủ công và theo dõi enrollment chạy qua engine.
func TestWorkflowModule(t *testing.T) {
	baseURL := "http://localhost:8080/api/v1"
	waitForHealth(baseURL, 10, 1*time.Second, t)

	client := newAPIClient(baseURL)
	suffix := time.Now().UnixNano()

	// ============================================
	// SETUP: user + organization
	// ============================================
	email := fmt.Sprintf("wf_tester_%d@example.com", suffix)
	password := "MatKhau@123456"

	resp, _, err := client.POST("/auth/register", map[string]interface{}{
		"name":     "Workflow Tester",
		"email":    email,
		"password": password,
	})
	require.NoError(t, err, "❌ Lỗi khi đăng ký user")
	require.Contains(t, []int{http.StatusOK, http.StatusCreated}, resp.StatusCode, "❌ Đăng ký user thất bại")

	resp, result, err := client.POST("/auth/login", map[string]interface{}{
		"email":    email,
		"password": password,
	})
	require.NoError(t, err, "❌ Lỗi khi đăng nhập")
	require.Equal(t, http.StatusOK, resp.StatusCode, "❌ Đăng nhập thất bại")
	token, _ := dataField(result, "token").(string)
	require.NotEmpty(t, token, "❌ Response đăng nhập thiếu token")
	client.token = token

	resp, result, err = client.POST("/organizations", map[string]interface{}{
		"name": fmt.Sprintf("WF Test Org %d", suffix),
		"code": fmt.Sprintf("wf-test-%d", suffix),
	})
	require.NoError(t, err, "❌ Lỗi khi tạo organization")
	require.Contains(t, []int{http.StatusOK, http.StatusCreated}, resp.StatusCode, "❌ Tạo organization thất bại")
	orgID, _ := dataField(result, "id").(string)
	require.NotEmpty(t, orgID, "❌ Response tạo organization thiếu id")
	client.orgID = orgID

	// Contact đích cho enrollment
	resp, result, err = client.POST("/contacts", map[string]interface{}{
		"firstName": "Lan",
		"lastName":  "Nguyễn",
		"email":     fmt.Sprintf("lan_%d@example.com", suffix),
	})
	require.NoError(t, err, "❌ Lỗi khi tạo contact")
	require.Contains(t, []int{http.StatusOK, http.StatusCreated}, resp.StatusCode, "❌ Tạo contact thất bại")
	contactID, _ := dataField(result, "id").(string)
	require.NotEmpty(t, contactID, "❌ Response tạo contact thiếu id")

	// Tag dùng cho step add_tag
	resp, result, err = client.POST("/tags", map[string]interface{}{
		"name":  fmt.Sprintf("wf-tag-%d", suffix),
		"color": "#4a90d9",
	})
	require.NoError(t, err, "❌ Lỗi khi tạo tag")
	require.Contains(t, []int{http.StatusOK, http.StatusCreated}, resp.StatusCode, "❌ Tạo tag thất bại")
	tagID, _ := dataField(result, "id").(string)
	require.NotEmpty(t, tagID, "❌ Response tạo tag thiếu id")

	var workflowID string
	var enrollmentID string

	// ============================================
	// TEST WORKFLOW DEFINITION
	// ============================================
	t.Run("⚙️ Workflow definition lifecycle", func(t *testing.T) {
		t.Run("CREATE - Tạo workflow ở trạng thái draft", func(t *testing.T) {
			resp, result, err := client.POST("/workflows", map[string]interface{}{
				"name":        fmt.Sprintf("Welcome Flow %d", suffix),
				"description": "Gắn tag chào mừng cho contact mới",
				"trigger": map[string]interface{}{
					"type":   "contact_created",
					"config": map[string]interface{}{},
				},
				"steps": []map[string]interface{}{
					{
						"stepId": "gan_tag",
						"type":   "add_tag",
						"tag":    map[string]interface{}{"tagIds": []string{tagID}},
					},
					{"stepId": "het", "type": "end"},
				},
			})
			require.NoError(t, err, "❌ Lỗi khi tạo workflow")
			require.Contains(t, []int{http.StatusOK, http.StatusCreated}, resp.StatusCode, "❌ Tạo workflow thất bại")

			workflowID, _ = dataField(result, "id").(string)
			require.NotEmpty(t, workflowID, "❌ Response tạo workflow thiếu id")
			assert.Equal(t, "draft", dataField(result, "status"), "❌ Workflow mới phải ở trạng thái draft")
		})

		t.Run("CREATE - Định nghĩa không hợp lệ bị từ chối", func(t *testing.T) {
			resp, _, err := client.POST("/workflows", map[string]interface{}{
				"name": "Bad Flow",
				"trigger": map[string]interface{}{
					"type": "contact_created",
				},
				"steps": []map[string]interface{}{
					{"stepId": "a", "type": "add_tag", "tag": map[string]interface{}{"tagIds": []string{tagID}}, "nextStepId": "khong_ton_tai"},
				},
			})
			require.NoError(t, err)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "❌ next_step_id trỏ tới step không tồn tại phải trả 400")
		})

		t.Run("ACTIVATE - Kích hoạt workflow", func(t *testing.T) {
			resp, result, err := client.POST("/workflows/"+workflowID+"/activate", nil)
			require.NoError(t, err, "❌ Lỗi khi kích hoạt workflow")
			require.Equal(t, http.StatusOK, resp.StatusCode, "❌ Kích hoạt workflow thất bại")
			assert.Equal(t, "active", dataField(result, "status"), "❌ Workflow phải chuyển sang active")
		})

		t.Run("ACTIVATE - Kích hoạt lại bị từ chối", func(t *testing.T) {
			resp, _, err := client.POST("/workflows/"+workflowID+"/activate", nil)
			require.NoError(t, err)
			assert.Equal(t, http.StatusConflict, resp.StatusCode, "❌ Kích hoạt workflow đang active phải trả 409")
		})
	})

	// ============================================
	// TEST ENROLLMENT LIFECYCLE
	// ============================================
	t.Run("🏃 Enrollment lifecycle", func(t *testing.T) {
		t.Run("ENROLL - Enroll contact thủ công", func(t *testing.T) {
			resp, result, err := client.POST("/workflows/"+workflowID+"/enroll", map[string]interface{}{
				"contactId": contactID,
			})
			require.NoError(t, err, "❌ Lỗi khi enroll contact")
			require.Contains(t, []int{http.StatusOK, http.StatusCreated}, resp.StatusCode, "❌ Enroll contact thất bại")

			enrollmentID, _ = dataField(result, "id").(string)
			require.NotEmpty(t, enrollmentID, "❌ Response enroll thiếu id")
			assert.Equal(t, "active", dataField(result, "status"), "❌ Enrollment mới phải active")
			assert.Equal(t, "gan_tag", dataField(result, "currentStepId"), "❌ Enrollment phải đứng ở step đầu")
		})

		t.Run("ENROLL - Enroll trùng bị từ chối", func(t *testing.T) {
			resp, _, err := client.POST("/workflows/"+workflowID+"/enroll", map[string]interface{}{
				"contactId": contactID,
			})
			require.NoError(t, err)
			assert.Equal(t, http.StatusConflict, resp.StatusCode, "❌ Enroll trùng khi còn enrollment active phải trả 409")
		})

		t.Run("PROCESS - Engine chạy enrollment tới khi hoàn tất", func(t *testing.T) {
			// Step đầu due sau 1 giây, step end thêm 1 giây nữa. Gọi process
			// vài lần thay vì chờ worker theo interval.
			deadline := time.Now().Add(10 * time.Second)
			completed := false
			for time.Now().Before(deadline) {
				time.Sleep(1200 * time.Millisecond)
				resp, _, err := client.POST("/enrollments/process", nil)
				require.NoError(t, err, "❌ Lỗi khi gọi process")
				require.Equal(t, http.StatusOK, resp.StatusCode, "❌ Gọi process thất bại")

				resp, result, err := client.GET("/enrollments/" + enrollmentID)
				require.NoError(t, err, "❌ Lỗi khi đọc enrollment")
				require.Equal(t, http.StatusOK, resp.StatusCode, "❌ Đọc enrollment thất bại")
				if dataField(result, "status") == "completed" {
					completed = true
					history, _ := dataField(result, "stepHistory").([]interface{})
					assert.Len(t, history, 2, "❌ stepHistory phải có 2 bản ghi")
					break
				}
			}
			require.True(t, completed, "❌ Enrollment phải completed trong thời hạn chờ")
		})

		t.Run("VERIFY - Tag đã được gắn vào contact", func(t *testing.T) {
			resp, result, err := client.GET("/contacts/" + contactID)
			require.NoError(t, err, "❌ Lỗi khi đọc contact")
			require.Equal(t, http.StatusOK, resp.StatusCode, "❌ Đọc contact thất bại")

			tagIDs, _ := dataField(result, "tagIds").([]interface{})
			assert.Contains(t, tagIDs, tagID, "❌ Contact phải được gắn tag bởi workflow")
		})

		t.Run("LIST - Danh sách enrollment của workflow", func(t *testing.T) {
			resp, result, err := client.GET("/workflows/" + workflowID + "/enrollments")
			require.NoError(t, err, "❌ Lỗi khi liệt kê enrollment")
			require.Equal(t, http.StatusOK, resp.StatusCode, "❌ Liệt kê enrollment thất bại")
			assert.NotNil(t, result["data"], "❌ Response liệt kê thiếu data")
		})
	})

	// ============================================
	// TEST ARCHIVE
	// ============================================
	t.Run("🗄️ Archive exit các enrollment active", func(t *testing.T) {
		// Workflow mới + enrollment đứng ở step wait dài để chắc chắn còn active
		resp, result, err := client.POST("/workflows", map[string]interface{}{
			"name": fmt.Sprintf("Long Wait Flow %d", suffix),
			"trigger": map[string]interface{}{
				"type": "contact_created",
			},
			"steps": []map[string]interface{}{
				{"stepId": "cho", "type": "wait", "wait": map[string]interface{}{"duration": 7, "unit": "days"}},
				{"stepId": "het", "type": "end"},
			},
		})
		require.NoError(t, err)
		require.Contains(t, []int{http.StatusOK, http.StatusCreated}, resp.StatusCode)
		longWorkflowID, _ := dataField(result, "id").(string)
		require.NotEmpty(t, longWorkflowID)

		resp, _, err = client.POST("/workflows/"+longWorkflowID+"/activate", nil)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		resp, result, err = client.POST("/workflows/"+longWorkflowID+"/enroll", map[string]interface{}{
			"contactId": contactID,
		})
		require.NoError(t, err)
		require.Contains(t, []int{http.StatusOK, http.StatusCreated}, resp.StatusCode)
		waitingEnrollmentID, _ := dataField(result, "id").(string)
		require.NotEmpty(t, waitingEnrollmentID)

		resp, _, err = client.POST("/workflows/"+longWorkflowID+"/archive", nil)
		require.NoError(t, err, "❌ Lỗi khi archive workflow")
		require.Equal(t, http.StatusOK, resp.StatusCode, "❌ Archive workflow thất bại")

		resp, result, err = client.GET("/enrollments/" + waitingEnrollmentID)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "exited", dataField(result, "status"), "❌ Archive phải exit enrollment active")
		assert.Equal(t, "workflow_archived", dataField(result, "exitReason"), "❌ exitReason phải là workflow_archived")
	})
}
