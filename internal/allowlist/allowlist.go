// Package allowlist 维护允许注册的邮箱集合。
// 集合从一个逗号分隔的文本文件加载（首行可以是包含 email 的表头），
// 文件缺失时回退到一个硬编码的开发名单。
package allowlist

import (
	"log"
	"os"
	"strings"
	"sync"
	"sync/atomic"
)

// fallbackAllowed 是文件缺失时使用的开发名单。
// 这是开发环境的显式降级路径，不是生产行为。
var fallbackAllowed = []string{
	"test@test.com",
	"test1@test.com",
	"warden@hostelhub.local",
}

// Store 是进程级的允许名单缓存。首次查询时惰性加载一次，
// Reload 重新读取文件并原子地换出底层集合，并发读取无需加锁。
type Store struct {
	path string

	loadMu sync.Mutex // 串行化 load/Reload，读路径不持有
	set    atomic.Pointer[map[string]struct{}]
}

// NewStore 创建一个以 path 为数据源的 Store。
func NewStore(path string) *Store {
	return &Store{path: path}
}

// IsAllowed 判断邮箱是否在允许名单中。比较是去空格且大小写不敏感的。
func (s *Store) IsAllowed(email string) bool {
	email = normalize(email)
	if email == "" {
		return false
	}
	set := s.load()
	_, ok := set[email]
	return ok
}

// Emails 返回规范化后的全部允许邮箱。
func (s *Store) Emails() []string {
	set := s.load()
	emails := make([]string, 0, len(set))
	for email := range set {
		emails = append(emails, email)
	}
	return emails
}

// Reload 重新读取名单文件并替换缓存。
func (s *Store) Reload() {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()
	set := s.read()
	s.set.Store(&set)
}

// load 返回当前集合，必要时完成首次加载。
func (s *Store) load() map[string]struct{} {
	if set := s.set.Load(); set != nil {
		return *set
	}
	s.loadMu.Lock()
	defer s.loadMu.Unlock()
	if set := s.set.Load(); set != nil {
		return *set
	}
	set := s.read()
	s.set.Store(&set)
	return set
}

func (s *Store) read() map[string]struct{} {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		log.Printf("允许名单文件 %s 不可用 (%v)，使用内置开发名单", s.path, err)
		set := make(map[string]struct{}, len(fallbackAllowed))
		for _, email := range fallbackAllowed {
			set[normalize(email)] = struct{}{}
		}
		return set
	}

	emails := parseAllowFile(string(raw))
	set := make(map[string]struct{}, len(emails))
	for _, email := range emails {
		set[email] = struct{}{}
	}
	return set
}

// parseAllowFile 解析名单文本。首行若包含 email 字段视为表头，
// 按表头定位邮箱列；否则取每行（或每行首个逗号分隔字段）为邮箱。
func parseAllowFile(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(strings.TrimSuffix(line, "\r"))
		if line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return nil
	}

	emailIndex := headerEmailIndex(lines[0])
	if emailIndex >= 0 {
		var emails []string
		for _, line := range lines[1:] {
			fields := strings.Split(line, ",")
			if emailIndex >= len(fields) {
				continue
			}
			if email := normalize(fields[emailIndex]); email != "" {
				emails = append(emails, email)
			}
		}
		return emails
	}

	// 无表头：每行一个邮箱，或取首列
	var emails []string
	for _, line := range lines {
		if email := normalize(strings.Split(line, ",")[0]); email != "" {
			emails = append(emails, email)
		}
	}
	return emails
}

// headerEmailIndex 返回表头中 email 列的下标，非表头行返回 -1。
func headerEmailIndex(line string) int {
	for i, field := range strings.Split(line, ",") {
		if strings.EqualFold(strings.TrimSpace(field), "email") {
			return i
		}
	}
	return -1
}

func normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
