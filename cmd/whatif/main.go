package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/dd0wney/cluso-cascade/pkg/cascade"
	"github.com/dd0wney/cluso-cascade/pkg/config"
	"github.com/dd0wney/cluso-cascade/pkg/detect"
	"github.com/dd0wney/cluso-cascade/pkg/export"
	"github.com/dd0wney/cluso-cascade/pkg/numutil"
	"github.com/dd0wney/cluso-cascade/pkg/scoring"
	"github.com/dd0wney/cluso-cascade/pkg/trajectory"
)

const manifestKeyEnv = "WHATIF_MANIFEST_KEY"

func main() {
	scenarioPath := flag.String("scenario", "", "Scenario YAML file (required)")
	configPath := flag.String("config", "", "Analysis configuration YAML file")
	outDir := flag.String("out", "", "Directory to write export artifacts into")
	sign := flag.Bool("sign", false, "Sign the bundle manifest with $"+manifestKeyEnv)
	flag.Parse()

	if *scenarioPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = loaded
	}

	scenario, err := config.LoadScenario(*scenarioPath)
	if err != nil {
		log.Fatalf("Failed to load scenario: %v", err)
	}
	graph, err := config.BuildGraph(scenario)
	if err != nil {
		log.Fatalf("Failed to build graph: %v", err)
	}
	granularity, err := config.ScenarioGranularity(scenario)
	if err != nil {
		log.Fatalf("Failed to resolve granularity: %v", err)
	}

	fmt.Printf("🚀 What-if analysis: %s\n", scenario.Name)
	if scenario.Description != "" {
		fmt.Printf("   %s\n", scenario.Description)
	}
	fmt.Printf("   Graph: %d nodes, %d edges | breach: %s | horizons: %v (%s)\n",
		graph.NodeCount(), graph.EdgeCount(), scenario.Breach, scenario.Horizons, granularity)

	horizon := maxHorizon(scenario.Horizons)

	// Cascade simulation
	cascadeOpts, err := cfg.CascadeOptions()
	if err != nil {
		log.Fatalf("Invalid cascade configuration: %v", err)
	}
	sim, err := cascade.NewSimulator(graph, cascadeOpts)
	if err != nil {
		log.Fatalf("Failed to create simulator: %v", err)
	}
	run, err := sim.Simulate(scenario.Breach, horizon, granularity.TimeStep())
	if err != nil {
		log.Fatalf("Simulation failed: %v", err)
	}
	printCascade(run)

	// Trajectory projection
	trajOpts, err := cfg.TrajectoryOptions()
	if err != nil {
		log.Fatalf("Invalid trajectory configuration: %v", err)
	}
	eng, err := trajectory.NewEngine(trajOpts)
	if err != nil {
		log.Fatalf("Failed to create trajectory engine: %v", err)
	}
	traj, err := eng.Project(
		trajectory.BreachCondition{NodeID: scenario.Breach, Description: scenario.Description},
		graph, scenario.Horizons, granularity, nil,
	)
	if err != nil {
		log.Fatalf("Projection failed: %v", err)
	}

	annotator, err := detect.NewAnnotator(detect.AnnotatorOptions{
		Decision:   cfg.DecisionOptions(),
		Inflection: cfg.InflectionOptions(),
	})
	if err != nil {
		log.Fatalf("Failed to create annotator: %v", err)
	}
	if err := annotator.Annotate(traj); err != nil {
		log.Fatalf("Annotation failed: %v", err)
	}
	printTrajectory(traj)

	// Fork alternative futures from the most critical decision point
	if len(traj.DecisionPoints) > 0 {
		dp := traj.DecisionPoints[0]
		branches, err := eng.GenerateBranches(traj, dp.Index, dp.Pathways)
		if err != nil {
			log.Fatalf("Branch generation failed: %v", err)
		}
		printBranches(traj, dp, branches)
	}

	// Scoring
	scorer, err := scoring.NewEngine(cfg.ScoringOptions())
	if err != nil {
		log.Fatalf("Failed to create scoring engine: %v", err)
	}
	severity, probability, mc, err := scoreRun(scorer, run, cascadeOpts, horizon)
	if err != nil {
		log.Fatalf("Scoring failed: %v", err)
	}
	printScores(severity, probability, mc)

	if *outDir != "" {
		writeArtifacts(*outDir, scenario.Name, graph, run, traj, severity, probability, mc, trajOpts.Seed, *sign)
	}

	fmt.Println("\n✨ Analysis complete")
}

func maxHorizon(horizons []float64) float64 {
	max := 0.0
	for _, h := range horizons {
		if h > max {
			max = h
		}
	}
	return max
}

func printCascade(run *cascade.Run) {
	fmt.Println("\n📊 Cascade simulation")
	for _, w := range run.Waves {
		fmt.Printf("   Wave %d (t=%.2fy): +%s | cumulative %.4f\n",
			w.Number, w.Timestamp, strings.Join(w.NewlyActivated, ", "), w.CumulativeImpact)
	}
	status := "ran to horizon"
	if run.Saturated {
		status = "saturated"
	}
	domains := make([]string, len(run.AffectedDomains))
	for i, d := range run.AffectedDomains {
		domains[i] = string(d)
	}
	fmt.Printf("   Impact %.4f (%s) across domains: %s\n",
		run.CumulativeImpact, status, strings.Join(domains, ", "))

	if len(run.FeedbackLoops) > 0 {
		fmt.Println("\n🔁 Feedback loops")
		for _, loop := range run.FeedbackLoops {
			fmt.Printf("   %s: %s (strength %.3f, cycle %.2fy)\n",
				loop.Type, strings.Join(loop.Nodes, " → "), loop.Strength, loop.CycleTime)
		}
	}
}

func printTrajectory(traj *trajectory.Trajectory) {
	first := traj.Baseline[0]
	last := traj.Baseline[len(traj.Baseline)-1]

	fmt.Println("\n📈 Trajectory projection")
	fmt.Printf("   %d points over %.1fy (%s)\n", len(traj.Baseline), traj.TimeHorizon, traj.Granularity)
	fmt.Printf("   Primary metric: %.3f → %.3f [%.3f, %.3f]\n",
		first.State.PrimaryMetric, last.State.PrimaryMetric, last.Bounds.Lower, last.Bounds.Upper)
	fmt.Printf("   Stability: %.3f → %.3f | GDP impact: %+.3f | Cohesion: %.3f → %.3f\n",
		first.State.StabilityIndex, last.State.StabilityIndex,
		last.State.GDPImpact, first.State.SocialCohesion, last.State.SocialCohesion)

	if len(traj.DecisionPoints) > 0 {
		fmt.Println("\n🎯 Decision points")
		for _, dp := range traj.DecisionPoints {
			fmt.Printf("   t=%.2fy criticality %.2f, window %.0f months: %s\n",
				dp.Timestamp, dp.Criticality, dp.InterventionWindow, dp.RecommendedAction)
		}
	}
	if len(traj.InflectionPoints) > 0 {
		fmt.Println("\n⚡ Inflection points")
		for _, ip := range traj.InflectionPoints {
			fmt.Printf("   t=%.2fy %s: %s\n", ip.Timestamp, ip.Type, ip.TriggeringCondition)
		}
	}
}

func printBranches(traj *trajectory.Trajectory, dp trajectory.DecisionPoint, branches []trajectory.Branch) {
	baselineEnd := traj.Baseline[len(traj.Baseline)-1].State.PrimaryMetric

	fmt.Printf("\n🌿 Alternative futures from t=%.2fy\n", dp.Timestamp)
	fmt.Printf("   (baseline ends at %.3f)\n", baselineEnd)
	for _, b := range branches {
		end := b.Points[len(b.Points)-1].State.PrimaryMetric
		fmt.Printf("   %-28s p=%.2f → ends at %.3f (%+.3f)\n",
			b.Action, b.Probability, end, end-baselineEnd)
	}
}

// scoreRun derives severity factors from the simulation outcome. Probability
// factors use a neutral 0.5 prior: likelihood evidence is analyst input the
// scenario file does not carry.
func scoreRun(scorer *scoring.Engine, run *cascade.Run, opts cascade.Options, horizon float64) (*scoring.ScoreResult, *scoring.ScoreResult, *scoring.SimulationResult, error) {
	immediate := 0.0
	if len(run.Waves) > 1 {
		immediate = run.Waves[1].CumulativeImpact
	}
	lastActivity := 0.0
	if n := len(run.Waves); n > 0 {
		lastActivity = run.Waves[n-1].Timestamp
	}

	severityFactors, err := scoring.NewSeverityFactors(
		numutil.Clamp(immediate, 0, 1),
		numutil.Clamp(run.CumulativeImpact/opts.SaturationThreshold, 0, 1),
		numutil.Clamp(lastActivity/horizon, 0, 1),
		numutil.Clamp(float64(len(run.AffectedDomains))/float64(len(cascade.Domains())), 0, 1),
	)
	if err != nil {
		return nil, nil, nil, err
	}
	probabilityFactors, err := scoring.NewProbabilityFactors(0.5, 0.5, 0.5, 0.5)
	if err != nil {
		return nil, nil, nil, err
	}

	severity, err := scorer.CalculateSeverity(severityFactors)
	if err != nil {
		return nil, nil, nil, err
	}
	probability, err := scorer.CalculateProbability(probabilityFactors)
	if err != nil {
		return nil, nil, nil, err
	}
	mc, err := scorer.MonteCarloSimulation(severityFactors, probabilityFactors, 1000)
	if err != nil {
		return nil, nil, nil, err
	}
	return severity, probability, mc, nil
}

func printScores(severity, probability *scoring.ScoreResult, mc *scoring.SimulationResult) {
	fmt.Println("\n⚖️  Scenario scores")
	fmt.Printf("   Severity:    %.3f [%.3f, %.3f]\n",
		severity.Score, severity.ConfidenceInterval.Lower, severity.ConfidenceInterval.Upper)
	fmt.Printf("   Probability: %.3f [%.3f, %.3f] (neutral prior)\n",
		probability.Score, probability.ConfidenceInterval.Lower, probability.ConfidenceInterval.Upper)
	fmt.Printf("   Risk (Monte Carlo, n=%d): mean %.3f, p95 %.3f\n",
		mc.Simulations, mc.Risk.Mean, mc.Risk.Percentiles["p95"])
}

func writeArtifacts(dir, scenarioName string, graph *cascade.Graph, run *cascade.Run, traj *trajectory.Trajectory, severity, probability *scoring.ScoreResult, mc *scoring.SimulationResult, seed int64, sign bool) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}

	viz, err := export.BuildVisualization(graph, run, export.NewForceDirectedLayout(&export.LayoutConfig{Seed: seed}))
	if err != nil {
		log.Fatalf("Failed to build visualization: %v", err)
	}
	vizJSON, err := viz.JSON()
	if err != nil {
		log.Fatalf("Failed to encode visualization: %v", err)
	}

	trajJSON, err := export.MarshalTrajectory(traj)
	if err != nil {
		log.Fatalf("Failed to encode trajectory: %v", err)
	}

	scoresJSON, err := json.MarshalIndent(map[string]any{
		"severity":    severity,
		"probability": probability,
		"simulation":  mc,
	}, "", "  ")
	if err != nil {
		log.Fatalf("Failed to encode scores: %v", err)
	}

	bundle, err := export.Seal([]export.Artifact{
		{Name: export.ArtifactVisualization, Data: vizJSON},
		{Name: export.ArtifactTrajectory, Data: trajJSON},
		{Name: export.ArtifactScores, Data: scoresJSON},
	})
	if err != nil {
		log.Fatalf("Failed to seal bundle: %v", err)
	}
	bundleJSON, err := json.MarshalIndent(bundle, "", "  ")
	if err != nil {
		log.Fatalf("Failed to encode bundle: %v", err)
	}

	files := map[string][]byte{
		"visualization.json": vizJSON,
		"trajectory.json":    trajJSON,
		"scores.json":        scoresJSON,
		"bundle.json":        bundleJSON,
	}

	if sign {
		key := os.Getenv(manifestKeyEnv)
		if key == "" {
			log.Fatalf("-sign requires %s to be set", manifestKeyEnv)
		}
		token, err := export.SignManifest(bundle, scenarioName, []byte(key))
		if err != nil {
			log.Fatalf("Failed to sign manifest: %v", err)
		}
		files["manifest.jwt"] = []byte(token)
	}

	fmt.Println("\n💾 Writing artifacts")
	for name, data := range files {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			log.Fatalf("Failed to write %s: %v", path, err)
		}
		fmt.Printf("   %s (%d bytes)\n", path, len(data))
	}
	fmt.Printf("   Bundle digest: %s\n", bundle.Digest)
}
