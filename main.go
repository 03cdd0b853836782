package main

import (
	"fmt"
	"log"
	"math"
	"time"

	"gonum.org/v1/gonum/spatial/r1"

	"github.com/nlawrance/swingup/environment"
	"github.com/nlawrance/swingup/environment/pendulum"
	"github.com/nlawrance/swingup/rollout"
	"github.com/nlawrance/swingup/tracker"
	"github.com/nlawrance/swingup/vpg"
)

const (
	epochs     = 100
	metricFile = "rewards.log"
)

func main() {
	var seed uint64 = 192382

	// Create the environment. The pendulum starts hanging near the
	// bottom with little angular velocity.
	angle := r1.Interval{Min: math.Pi - 0.1, Max: math.Pi}
	speed := r1.Interval{Min: -0.01, Max: 0.01}
	starter := environment.NewUniformStarter([]r1.Interval{angle, speed},
		seed)

	env, err := pendulum.New(starter)
	if err != nil {
		log.Fatalf("could not create environment: %v", err)
	}

	// Create the learning algorithm
	config := vpg.DefaultConfig()
	agent, err := vpg.New(env.ObservationSize(), config, seed)
	if err != nil {
		log.Fatalf("could not create agent: %v", err)
	}

	track, err := tracker.NewReturn(metricFile)
	if err != nil {
		log.Fatalf("could not create tracker: %v", err)
	}
	defer func() {
		if err := track.Close(); err != nil {
			log.Fatalf("could not close tracker: %v", err)
		}
	}()

	start := time.Now()
	for epoch := 0; epoch < epochs; epoch++ {
		epochStart := time.Now()

		batch, err := rollout.Collect(env, agent, agent, agent.Estimator(),
			config.BatchSize)
		if err != nil {
			log.Fatalf("epoch %v: could not collect batch: %v", epoch, err)
		}
		if err := agent.Update(batch); err != nil {
			log.Fatalf("epoch %v: could not update agent: %v", epoch, err)
		}

		fmt.Printf("Epoch %v  |  Mean episode reward: %v  |  Took: %v\n",
			epoch, batch.MeanEpisodeReward, time.Since(epochStart))

		if err := track.Track(batch.MeanEpisodeReward); err != nil {
			log.Fatalf("epoch %v: %v", epoch, err)
		}
	}
	fmt.Printf("Total time: %v\n", time.Since(start))
}
