// Package navigation содержит пути портала и абстракцию перехода между ними.
package navigation

import (
	"net/url"
	"sync"

	"github.com/iudanet/medportal/internal/models"
)

const (
	LoginPath      = "/auth/login"
	VerifyPath     = "/auth/verify"
	OnboardingPath = "/onboarding"
	DashboardPath  = "/dashboard"

	// RedirectedFromParam — query-параметр, в котором guard передает исходный путь
	RedirectedFromParam = "redirectedFrom"
)

// Navigator performs a forced navigation, e.g. to the login page after the
// session became unusable.
type Navigator interface {
	Navigate(path string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(path string)

// Navigate вызывает f(path)
func (f NavigatorFunc) Navigate(path string) { f(path) }

// Noop игнорирует переходы
var Noop Navigator = NavigatorFunc(func(string) {})

// HomePath возвращает стартовую страницу пользователя:
// онбординг, пока он не пройден, иначе дашборд его роли.
func HomePath(info models.BasicInfo) string {
	if !info.HasCompletedOnboarding {
		return OnboardingPath
	}
	if info.Role.Valid() {
		return DashboardPath + "/" + string(info.Role)
	}
	return DashboardPath
}

// LoginRedirect строит путь логина с возвратом на from
func LoginRedirect(from string) string {
	if from == "" {
		return LoginPath
	}
	q := url.Values{}
	q.Set(RedirectedFromParam, from)
	return LoginPath + "?" + q.Encode()
}

// Recorder запоминает все переходы. Потокобезопасен.
type Recorder struct {
	paths []string
	mu    sync.Mutex
}

// Navigate записывает путь
func (r *Recorder) Navigate(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, path)
}

// Paths возвращает копию записанных путей
func (r *Recorder) Paths() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.paths...)
}

// Last возвращает последний переход или пустую строку
func (r *Recorder) Last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.paths) == 0 {
		return ""
	}
	return r.paths[len(r.paths)-1]
}
