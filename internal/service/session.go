package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Page 会话当前所在页面
type Page string

const (
	PageSummary Page = "summary"
	PageEdit    Page = "edit"
)

// Session 单个编辑会话：持有一份草稿与页面导航状态
//
// 同一会话的 HTTP 请求可能并发到达，草稿与页面状态均在 mu 下访问。
type Session struct {
	ID        string
	CreatedAt time.Time

	mu       sync.Mutex
	draft    *Draft
	page     Page
	lastSeen time.Time
}

// ────────────────────── SessionManager ──────────────────────

// SessionManager 会话注册表，闲置超过 idleTTL 的会话被丢弃
//
// maxSessions > 0 时注册表容量受限：已满时先清理过期会话，仍满则淘汰最久未活跃的会话，
// 不接收 Cookie 的客户端无法无限制地占用内存。
type SessionManager struct {
	mu          sync.Mutex
	sessions    map[string]*Session
	idleTTL     time.Duration
	maxSessions int
	now         func() time.Time
}

// NewSessionManager 创建 SessionManager；maxSessions <= 0 表示不限容量
func NewSessionManager(idleTTL time.Duration, maxSessions int) *SessionManager {
	return &SessionManager{
		sessions:    make(map[string]*Session),
		idleTTL:     idleTTL,
		maxSessions: maxSessions,
		now:         time.Now,
	}
}

// Create 注册新会话：空草稿、位于汇总页
func (m *SessionManager) Create() *Session {
	now := m.now()
	s := &Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		draft:     NewDraft(),
		page:      PageSummary,
		lastSeen:  now,
	}
	m.mu.Lock()
	if m.maxSessions > 0 && len(m.sessions) >= m.maxSessions {
		m.evictLocked(now)
	}
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s
}

// evictLocked 为新会话腾出位置，调用方须持有 m.mu
func (m *SessionManager) evictLocked(now time.Time) {
	var (
		oldestID   string
		oldestSeen time.Time
	)
	for id, s := range m.sessions {
		if m.expired(s, now) {
			delete(m.sessions, id)
			continue
		}
		s.mu.Lock()
		seen := s.lastSeen
		s.mu.Unlock()
		if oldestID == "" || seen.Before(oldestSeen) {
			oldestID, oldestSeen = id, seen
		}
	}
	if len(m.sessions) >= m.maxSessions && oldestID != "" {
		delete(m.sessions, oldestID)
	}
}

// Get 查找会话并刷新活跃时间；已过期的会话会被移除
func (m *SessionManager) Get(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, false
	}
	now := m.now()
	if m.expired(s, now) {
		delete(m.sessions, id)
		return nil, false
	}
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
	return s, true
}

// Delete 结束会话
func (m *SessionManager) Delete(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// Len 当前会话数
func (m *SessionManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep 清理全部过期会话，返回清理数量
func (m *SessionManager) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	removed := 0
	for id, s := range m.sessions {
		if m.expired(s, now) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

// Run 按 interval 周期清理，直到 ctx 取消
func (m *SessionManager) Run(ctx context.Context, interval time.Duration, logger *zap.Logger) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.Sweep(); n > 0 {
				logger.Info("已清理过期会话", zap.Int("removed", n))
			}
		}
	}
}

func (m *SessionManager) expired(s *Session, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastSeen) > m.idleTTL
}

// ────────────────────── SessionService ──────────────────────

// SessionService 会话生命周期业务接口
type SessionService interface {
	// Start 创建会话并从持久层加载草稿；持久层不可用时返回空草稿会话与错误
	Start(ctx context.Context) (*Session, error)
	Get(id string) (*Session, bool)
	End(id string)
}

type sessionService struct {
	manager    *SessionManager
	reconciler Reconciler
	logger     *zap.Logger
}

// NewSessionService 创建 SessionService
func NewSessionService(manager *SessionManager, reconciler Reconciler, logger *zap.Logger) SessionService {
	return &sessionService{manager: manager, reconciler: reconciler, logger: logger}
}

func (s *sessionService) Start(ctx context.Context) (*Session, error) {
	sess := s.manager.Create()

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if _, err := s.reconciler.Load(ctx, sess.draft); err != nil {
		s.logger.Warn("会话初始化加载失败，使用空草稿", zap.String("session_id", sess.ID), zap.Error(err))
		return sess, err
	}
	s.logger.Debug("会话已创建", zap.String("session_id", sess.ID))
	return sess, nil
}

func (s *sessionService) Get(id string) (*Session, bool) {
	return s.manager.Get(id)
}

func (s *sessionService) End(id string) {
	s.manager.Delete(id)
}
