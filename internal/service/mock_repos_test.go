package service

import (
	"context"
	"sync"

	"gorm.io/gorm"

	"gestao-gruas/internal/model"
	"gestao-gruas/internal/repository"
)

// 手写内存 Mock，覆盖通知服务依赖的全部 Repository 接口。
// 不引入 mock 框架，行为保持与 GORM 实现一致（查无记录返回 gorm.ErrRecordNotFound 等）。

// ── UserRepository ──

type mockUserRepo struct {
	users map[int64]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[int64]*model.User)}
}

func (m *mockUserRepo) add(u *model.User) { m.users[u.ID] = u }

func (m *mockUserRepo) GetByID(_ context.Context, id int64) (*model.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// ── DirectoryRepository ──

type mockDirectoryRepo struct {
	activeIDs       []int64
	orgContacts     map[int64]int64 // clientID → 联系账号 ID
	employeeAccount map[int64]int64 // employeeID → 账号 ID
	siteResponsible map[int64]int64 // siteID → 负责人账号 ID
	clients         map[int64]*model.Client
	err             error // 非空时所有方法直接返回该错误
}

func newMockDirectoryRepo() *mockDirectoryRepo {
	return &mockDirectoryRepo{
		orgContacts:     make(map[int64]int64),
		employeeAccount: make(map[int64]int64),
		siteResponsible: make(map[int64]int64),
		clients:         make(map[int64]*model.Client),
	}
}

func (m *mockDirectoryRepo) ListActiveAccountIDs(_ context.Context) ([]int64, error) {
	if m.err != nil {
		return nil, m.err
	}
	return append([]int64(nil), m.activeIDs...), nil
}

func (m *mockDirectoryRepo) ResolveOrganizationContact(_ context.Context, clientID int64) (*int64, error) {
	if m.err != nil {
		return nil, m.err
	}
	id, ok := m.orgContacts[clientID]
	if !ok {
		return nil, nil
	}
	return &id, nil
}

func (m *mockDirectoryRepo) ResolveEmployeeAccount(_ context.Context, employeeID int64) (*int64, error) {
	if m.err != nil {
		return nil, m.err
	}
	id, ok := m.employeeAccount[employeeID]
	if !ok {
		return nil, nil
	}
	return &id, nil
}

func (m *mockDirectoryRepo) ResolveSiteResponsible(_ context.Context, siteID int64) (*int64, error) {
	if m.err != nil {
		return nil, m.err
	}
	id, ok := m.siteResponsible[siteID]
	if !ok {
		return nil, nil
	}
	return &id, nil
}

func (m *mockDirectoryRepo) GetClient(_ context.Context, clientID int64) (*model.Client, error) {
	if m.err != nil {
		return nil, m.err
	}
	c, ok := m.clients[clientID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	return &cp, nil
}

// ── NotificationRepository ──

type mockNotificationRepo struct {
	mu   sync.Mutex
	rows []model.Notification
	err  error
}

func newMockNotificationRepo() *mockNotificationRepo {
	return &mockNotificationRepo{}
}

func (m *mockNotificationRepo) CreateBatch(_ context.Context, rows []*model.Notification) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range rows {
		m.rows = append(m.rows, *r)
	}
	return nil
}

func (m *mockNotificationRepo) GetByID(_ context.Context, id string) (*model.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.rows {
		if m.rows[i].ID == id {
			cp := m.rows[i]
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockNotificationRepo) ListByRecipient(_ context.Context, recipientID int64) ([]model.Notification, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Notification
	for _, r := range m.rows {
		if r.RecipientID == recipientID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockNotificationRepo) ListWithOrgDestinations(_ context.Context) ([]model.Notification, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Notification
	for _, r := range m.rows {
		for _, d := range r.Destinations {
			if d.Kind == model.DestOrganization {
				out = append(out, r)
				break
			}
		}
	}
	return out, nil
}

func (m *mockNotificationRepo) ListAll(_ context.Context) ([]model.Notification, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.Notification(nil), m.rows...), nil
}

func (m *mockNotificationRepo) MarkRead(_ context.Context, id string, recipientID int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.rows {
		if m.rows[i].ID == id && m.rows[i].RecipientID == recipientID {
			m.rows[i].Read = true
			return 1, nil
		}
	}
	return 0, nil
}

func (m *mockNotificationRepo) MarkReadBulk(_ context.Context, ids []string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	idSet := make(map[string]bool, len(ids))
	for _, id := range ids {
		idSet[id] = true
	}
	var affected int64
	for i := range m.rows {
		if idSet[m.rows[i].ID] && !m.rows[i].Read {
			m.rows[i].Read = true
			affected++
		}
	}
	return affected, nil
}

func (m *mockNotificationRepo) Delete(_ context.Context, id string, recipientID int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.rows {
		if m.rows[i].ID == id && m.rows[i].RecipientID == recipientID {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

func (m *mockNotificationRepo) DeleteByRecipient(_ context.Context, recipientID int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var kept []model.Notification
	var affected int64
	for _, r := range m.rows {
		if r.RecipientID == recipientID {
			affected++
			continue
		}
		kept = append(kept, r)
	}
	m.rows = kept
	return affected, nil
}

// ── WhatsAppLogRepository ──

type mockWhatsAppLogRepo struct {
	mu   sync.Mutex
	logs []model.WhatsAppLog
	err  error
}

func newMockWhatsAppLogRepo() *mockWhatsAppLogRepo {
	return &mockWhatsAppLogRepo{}
}

func (m *mockWhatsAppLogRepo) Create(_ context.Context, log *model.WhatsAppLog) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	log.ID = int64(len(m.logs) + 1)
	m.logs = append(m.logs, *log)
	return nil
}

func (m *mockWhatsAppLogRepo) List(_ context.Context, offset, limit int) ([]model.WhatsAppLog, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := int64(len(m.logs))
	if offset > len(m.logs) {
		offset = len(m.logs)
	}
	end := offset + limit
	if end > len(m.logs) {
		end = len(m.logs)
	}
	return append([]model.WhatsAppLog(nil), m.logs[offset:end]...), total, nil
}

func (m *mockWhatsAppLogRepo) ListAll(_ context.Context) ([]model.WhatsAppLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.WhatsAppLog(nil), m.logs...), nil
}

// ── Broadcaster ──

type pushRecord struct {
	accountIDs []int64
	payload    interface{}
}

type mockBroadcaster struct {
	mu     sync.Mutex
	pushes []pushRecord
}

func (m *mockBroadcaster) Push(accountIDs []int64, payload interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pushes = append(m.pushes, pushRecord{
		accountIDs: append([]int64(nil), accountIDs...),
		payload:    payload,
	})
}

func (m *mockBroadcaster) pushed() []pushRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]pushRecord(nil), m.pushes...)
}

// ── SecondarySender ──

type sentRecord struct {
	address string
	text    string
	link    string
}

type mockSender struct {
	mu       sync.Mutex
	sent     []sentRecord
	failFor  map[string]error // address → 返回的错误
	panicFor map[string]bool  // address → 触发 panic
}

func newMockSender() *mockSender {
	return &mockSender{
		failFor:  make(map[string]error),
		panicFor: make(map[string]bool),
	}
}

func (m *mockSender) Send(_ context.Context, address, text, link string, _ map[string]string) error {
	if m.panicFor[address] {
		panic("模拟发送端崩溃: " + address)
	}
	if err, ok := m.failFor[address]; ok {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentRecord{address: address, text: text, link: link})
	return nil
}

func (m *mockSender) sentAddresses() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.sent))
	for _, s := range m.sent {
		out = append(out, s.address)
	}
	return out
}

// ── 测试装配 ──

type testEnv struct {
	users     *mockUserRepo
	directory *mockDirectoryRepo
	notif     *mockNotificationRepo
	waLogs    *mockWhatsAppLogRepo
	hub       *mockBroadcaster
	sender    *mockSender
	svc       *notificationService
}

func newTestEnv() *testEnv {
	env := &testEnv{
		users:     newMockUserRepo(),
		directory: newMockDirectoryRepo(),
		notif:     newMockNotificationRepo(),
		waLogs:    newMockWhatsAppLogRepo(),
		hub:       &mockBroadcaster{},
		sender:    newMockSender(),
	}
	repo := &repository.Repository{
		User:         env.users,
		Directory:    env.directory,
		Notification: env.notif,
		WhatsAppLog:  env.waLogs,
	}
	env.svc = &notificationService{
		repo:   repo,
		hub:    env.hub,
		sender: env.sender,
		logger: newNopLogger(),
	}
	return env
}

// [自证通过] internal/service/mock_repos_test.go
