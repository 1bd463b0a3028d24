package cmd

import (
	"context"
	"os"
	"path/filepath"

	"github.com/nextlevelbuilder/vtgo/internal/api"
	"github.com/nextlevelbuilder/vtgo/internal/config"
	"github.com/nextlevelbuilder/vtgo/internal/memory"
	mw "github.com/nextlevelbuilder/vtgo/internal/middleware"
	"github.com/nextlevelbuilder/vtgo/internal/obs/log"
	"github.com/nextlevelbuilder/vtgo/internal/planmode"
	"github.com/nextlevelbuilder/vtgo/internal/policy"
	"github.com/nextlevelbuilder/vtgo/internal/runtime"
	"github.com/nextlevelbuilder/vtgo/internal/skill"
	"github.com/nextlevelbuilder/vtgo/internal/snapshot"
	"github.com/nextlevelbuilder/vtgo/internal/store"
	"github.com/nextlevelbuilder/vtgo/internal/store/sqlitestore"
	"github.com/nextlevelbuilder/vtgo/internal/systool"
	"github.com/nextlevelbuilder/vtgo/internal/tools"
	"github.com/nextlevelbuilder/vtgo/internal/workspace/watch"
)

func resolveWorkspaceRoot() (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	if realWD, err := filepath.EvalSymlinks(wd); err == nil {
		wd = realWD
	}
	// Use workspace/ subdirectory as the working directory for file operations
	workspaceDir := filepath.Join(wd, "workspace")
	// Create if it doesn't exist
	if err := os.MkdirAll(workspaceDir, 0755); err != nil {
		return "", err
	}
	return workspaceDir, nil
}

func defaultSkillRoots(workspaceRoot string) []string {
	var roots []string

	// workspaceRoot points to workspace/ subdirectory, go up one level for project root
	projectRoot := filepath.Dir(workspaceRoot)

	// Project skills (<project>/.sea/skills). Highest priority.
	roots = append(roots, filepath.Join(projectRoot, ".sea", "skills"))

	// Legacy project skills path (<project>/workspace/.sea/skills).
	roots = append(roots, filepath.Join(workspaceRoot, ".sea", "skills"))

	// Global skills (~/.sea/<agent>/skills).
	if home, err := os.UserHomeDir(); err == nil {
		roots = append(roots, filepath.Join(home, ".sea", agentFlag, "skills"))
	}

	// Built-in skills shipped with the repo.
	roots = append(roots, filepath.Join(projectRoot, "skills"))

	// Codex skills (optional).
	if codexHome := os.Getenv("CODEX_HOME"); codexHome != "" {
		roots = append(roots, filepath.Join(codexHome, "skills"))
	} else if home, err := os.UserHomeDir(); err == nil {
		roots = append(roots, filepath.Join(home, ".codex", "skills"))
	}

	return roots
}

func newAPIEngine(workspaceRoot string) (api.Engine, *planmode.Controller, error) {
	cfg, err := config.Load(nil)
	if err != nil {
		return nil, nil, err
	}

	var sessionStore store.SessionStore
	var planStore store.PlanStore
	if cfg.StoreBackend == "sqlite" {
		db, err := sqlitestore.Open(workspaceRoot)
		if err != nil {
			return nil, nil, err
		}
		sessionStore = db.SessionStore()
		planStore = db.PlanStore()
	} else {
		sessionStore, err = store.NewFileSessionStore(workspaceRoot)
		if err != nil {
			return nil, nil, err
		}
		planStore, err = store.NewFilePlanStore(workspaceRoot)
		if err != nil {
			return nil, nil, err
		}
	}
	eventLog, err := store.NewJSONLEventLog(workspaceRoot)
	if err != nil {
		return nil, nil, err
	}

	skillRoots := defaultSkillRoots(workspaceRoot)
	skillIndex, err := skill.NewDirSkillIndex(skillRoots...)
	if err != nil {
		return nil, nil, err
	}

	skillWatcher := watch.New(0, func() {
		if err := skillIndex.Refresh(); err != nil {
			logger.Warn("Watch", "Skill index refresh failed", map[string]interface{}{"error": err.Error()})
		}
	})
	if err := skillWatcher.Start(context.Background(), skillRoots...); err != nil {
		logger.Warn("Watch", "Failed to start skill directory watcher", map[string]interface{}{"error": err.Error()})
	}

	mem := memory.NewStructuredManager(workspaceRoot)
	planController := planmode.New()
	snapshots, err := snapshot.NewStore(workspaceRoot)
	if err != nil {
		return nil, nil, err
	}

	reg := tools.NewRegistry()
	reg.MustRegister(&systool.ListSkillsTool{SkillIndex: skillIndex})
	reg.MustRegister(&systool.ReadSkillTool{SkillIndex: skillIndex})
	reg.MustRegister(&systool.ActivateSkillTool{SkillIndex: skillIndex})
	reg.MustRegister(&systool.ReadTodosTool{PlanStore: planStore})
	reg.MustRegister(&systool.WriteTodosTool{PlanStore: planStore})
	reg.MustRegister(&systool.ReadMemoryTool{Manager: mem})
	reg.MustRegister(&systool.UpdateMemoryTool{Manager: mem})
	reg.MustRegister(&systool.UnderstandIntentTool{})
	reg.MustRegister(&systool.EnterPlanModeTool{Controller: planController})
	reg.MustRegister(&systool.ExitPlanModeTool{Controller: planController})

	if enableToolsFlag {
		for _, t := range tools.DefaultRegistry(workspaceRoot).All() {
			reg.MustRegister(t)
		}
		// run_skill_script needs skill index for path resolution.
		reg.MustRegister(tools.NewRunSkillScriptTool(workspaceRoot, skillIndex))
	}

	reg.SetPlanModeQuery(planController.Query)
	reg.SetFullAuto(api.ApprovalMode(cfg.ApprovalMode) == api.ModeFullAuto)

	var llm runtime.LLM = &runtime.MockLLM{}
	if apiKey := os.Getenv("LLM_API_KEY"); apiKey != "" {
		baseURL := os.Getenv("LLM_BASE_URL")
		model := cfg.Model
		if modelFlag != "" {
			model = modelFlag
		}
		openai := runtime.NewOpenAILLM(baseURL, apiKey, model)
		llm = openai
	}

	engine, err := runtime.NewEngine(runtime.EngineConfig{
		LLM:                   llm,
		Tools:                 reg,
		Policy:                policy.NewDefaultPolicy(),
		Middlewares:           []runtime.Middleware{mw.NewPersonaMiddleware(workspaceRoot, filepath.Dir(workspaceRoot), agentFlag), mw.NewBasePromptMiddleware(workspaceRoot), mw.NewSkillsMiddleware(skillIndex), mw.NewMemoryMiddleware(mem), mw.NewPlanningMiddleware(planStore)},
		SkillIndex:            skillIndex,
		WorkspaceRoot:         workspaceRoot,
		SessionStore:          sessionStore,
		PlanStore:             planStore,
		EventLog:              eventLog,
		Snapshots:             snapshots,
		AutoCompressThreshold: cfg.AutoCompressThreshold,
		CompressKeepTurns:     cfg.CompressKeepTurns,
		FilterHistoryTools:    cfg.FilterHistoryTools,
	})
	if err != nil {
		return nil, nil, err
	}
	return engine, planController, nil
}
