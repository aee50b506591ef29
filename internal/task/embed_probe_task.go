package task

import (
	"context"
	"log"
	"sync"
	"time"

	"gamify_toolkit/internal/model"
	"gamify_toolkit/internal/repository"
	"gamify_toolkit/internal/service"

	"github.com/robfig/cron/v3"
)

// 单轮最多探测的游戏数量
const probeBatchLimit = 200

// EmbedProbeTask 嵌入能力巡检任务
// 游戏站点可能在商家添加之后才加上 X-Frame-Options，
// 周期性重测能让后台的警告标记保持新鲜
type EmbedProbeTask struct {
	GameRepo    repository.GameRepository
	GameService *service.GameService
	Cron        *cron.Cron

	// 控制并发探测的数量，防止把本地带宽打满
	concurrencyLimit int
	sleepTime        time.Duration
	staleAfter       time.Duration
}

func NewEmbedProbeTask(gameRepo repository.GameRepository, gameService *service.GameService) *EmbedProbeTask {
	return &EmbedProbeTask{
		GameRepo:         gameRepo,
		GameService:      gameService,
		Cron:             cron.New(cron.WithSeconds()), // 支持秒级控制
		concurrencyLimit: 10,
		sleepTime:        100 * time.Millisecond, // 每个协程启动间隔，平滑波峰
		staleAfter:       24 * time.Hour,
	}
}

// Start 启动定时任务
func (t *EmbedProbeTask) Start() {
	// 每 6 小时巡检一次
	_, err := t.Cron.AddFunc("0 0 0/6 * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		t.probeJob(ctx)
	})

	if err != nil {
		log.Fatalf("无法启动嵌入巡检定时任务: %v", err)
	}

	t.Cron.Start()
	log.Println("嵌入巡检任务已启动 (每6小时检查一次)")
}

// Stop 停止定时任务
func (t *EmbedProbeTask) Stop() {
	t.Cron.Stop()
}

// RunOnce 手动执行一次
func (t *EmbedProbeTask) RunOnce(ctx context.Context) {
	t.probeJob(ctx)
}

func (t *EmbedProbeTask) probeJob(ctx context.Context) {
	before := time.Now().Add(-t.staleAfter)
	games, err := t.GameRepo.ListStaleEmbedChecks(ctx, before, probeBatchLimit)
	if err != nil {
		log.Printf("[Cron] 待巡检游戏查询失败: %v", err)
		return
	}

	if len(games) == 0 {
		return
	}

	// 信号量限制并发探测数量
	sem := make(chan struct{}, t.concurrencyLimit)
	var wg sync.WaitGroup

	log.Printf("[Cron] 开始巡检 %d 个游戏的嵌入能力，并发上限: %d", len(games), t.concurrencyLimit)

	for _, game := range games {
		select {
		case <-ctx.Done():
			log.Println("[Cron] 巡检任务超时停止")
			return
		default:
		}

		sem <- struct{}{}
		wg.Add(1)

		// 平滑波峰
		time.Sleep(t.sleepTime)

		go func(g model.Game) {
			defer wg.Done()
			defer func() { <-sem }()

			if _, err := t.GameService.ProbeEmbed(ctx, g.Shop, g.ID); err != nil {
				log.Printf("[Cron] 游戏 [%s] 巡检失败: %v", g.Title, err)
			}
		}(game)
	}

	wg.Wait()
	log.Println("[Cron] 本轮嵌入巡检完成")
}
