package std

import (
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/ichaly/ideabase/log"
)

// Watcher 文件监视器，监视目标文件所在目录，合并防抖时间内的变更后统一回调
type Watcher struct {
	watcher      *fsnotify.Watcher
	targets      map[string]struct{} // 目标文件绝对路径
	dirs         map[string]struct{} // 已监视目录
	callbacks    []func([]string)
	matcher      func(eventPath, target string) bool
	debounceTime time.Duration
	pending      map[string]struct{}
	timer        *time.Timer
	stopChan     chan struct{}
	started      bool
	mu           sync.Mutex
}

// WatcherOption 监视器选项
type WatcherOption func(*Watcher)

// WithDebounceTime 设置防抖时间
func WithDebounceTime(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounceTime = d
		}
	}
}

// WithMatcher 自定义事件路径与目标文件的匹配规则
func WithMatcher(matcher func(eventPath, target string) bool) WatcherOption {
	return func(w *Watcher) {
		w.matcher = matcher
	}
}

// NewWatcher 创建文件监视器
func NewWatcher(opts ...WatcherOption) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("创建文件监视器失败: %w", err)
	}
	w := &Watcher{
		watcher:      fw,
		targets:      make(map[string]struct{}),
		dirs:         make(map[string]struct{}),
		pending:      make(map[string]struct{}),
		matcher:      func(eventPath, target string) bool { return eventPath == target },
		debounceTime: 100 * time.Millisecond,
		stopChan:     make(chan struct{}),
	}
	for _, o := range opts {
		o(w)
	}
	return w, nil
}

// Add 添加监视目标文件，编辑器常以重命名方式保存，因此监视的是所在目录
func (my *Watcher) Add(paths ...string) error {
	my.mu.Lock()
	defer my.mu.Unlock()
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("解析路径失败: %w", err)
		}
		my.targets[abs] = struct{}{}

		dir := filepath.Dir(abs)
		if _, ok := my.dirs[dir]; ok {
			continue
		}
		if err := my.watcher.Add(dir); err != nil {
			return fmt.Errorf("添加监视目录失败: %w", err)
		}
		my.dirs[dir] = struct{}{}
		log.Debug().Str("directory", dir).Msg("已添加监视目录")
	}
	return nil
}

// OnChange 注册变更回调，参数为本次合并的变更文件
func (my *Watcher) OnChange(callback func([]string)) {
	my.mu.Lock()
	defer my.mu.Unlock()
	my.callbacks = append(my.callbacks, callback)
}

// Start 启动监视协程
func (my *Watcher) Start() error {
	my.mu.Lock()
	defer my.mu.Unlock()
	if my.started {
		return nil
	}
	if len(my.targets) == 0 {
		return fmt.Errorf("没有需要监视的文件")
	}
	my.started = true
	go my.loop()
	return nil
}

// Stop 停止监视
func (my *Watcher) Stop() error {
	my.mu.Lock()
	select {
	case <-my.stopChan:
		my.mu.Unlock()
		return nil
	default:
		close(my.stopChan)
	}
	if my.timer != nil {
		my.timer.Stop()
	}
	my.mu.Unlock()
	return my.watcher.Close()
}

func (my *Watcher) loop() {
	for {
		select {
		case event, ok := <-my.watcher.Events:
			if !ok {
				return
			}
			if !isWriteOrCreateOp(event.Op) {
				continue
			}
			target, ok := my.match(event.Name)
			if !ok {
				continue
			}
			log.Debug().Str("file", event.Name).Str("operation", event.Op.String()).Msg("检测到文件变更")
			my.schedule(target)

		case err, ok := <-my.watcher.Errors:
			if !ok {
				return
			}
			log.Error().Err(err).Msg("文件监视错误")

		case <-my.stopChan:
			return
		}
	}
}

// 检查是否是写入或创建操作
func isWriteOrCreateOp(op fsnotify.Op) bool {
	return op.Has(fsnotify.Write) || op.Has(fsnotify.Create)
}

func (my *Watcher) match(name string) (string, bool) {
	abs, err := filepath.Abs(name)
	if err != nil {
		return "", false
	}
	my.mu.Lock()
	defer my.mu.Unlock()
	for target := range my.targets {
		if my.matcher(abs, target) {
			return abs, true
		}
	}
	return "", false
}

// schedule 记录变更并重置防抖定时器
func (my *Watcher) schedule(path string) {
	my.mu.Lock()
	defer my.mu.Unlock()
	my.pending[path] = struct{}{}
	if my.timer != nil {
		my.timer.Stop()
	}
	my.timer = time.AfterFunc(my.debounceTime, my.fire)
}

func (my *Watcher) fire() {
	my.mu.Lock()
	select {
	case <-my.stopChan:
		my.mu.Unlock()
		return
	default:
	}
	changed := make([]string, 0, len(my.pending))
	for p := range my.pending {
		changed = append(changed, p)
	}
	my.pending = make(map[string]struct{})
	callbacks := make([]func([]string), len(my.callbacks))
	copy(callbacks, my.callbacks)
	my.mu.Unlock()

	if len(changed) == 0 {
		return
	}
	sort.Strings(changed)
	for _, callback := range callbacks {
		callback(changed)
	}
}
