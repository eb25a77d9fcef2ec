// Command graphhost is a demo host that loads a graph description and
// a WAV file, drives the render engine block by block, and optionally
// serves render/builder metrics over HTTP.
package main

import (
	"fmt"
	"math"
	"net/http"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"

	"github.com/signalpath/graphengine/internal/config"
	"github.com/signalpath/graphengine/internal/logging"
	"github.com/signalpath/graphengine/pkg/engine"
	"github.com/signalpath/graphengine/pkg/graph"
	"github.com/signalpath/graphengine/pkg/midi"
	"github.com/signalpath/graphengine/pkg/nodes"
	"github.com/signalpath/graphengine/pkg/port"
)

func main() {
	graphPath := pflag.String("graph", "", "Path to the graph description YAML file.")
	inputPath := pflag.StringP("input", "i", "", "Path to the input WAV file.")
	outputPath := pflag.StringP("output", "o", "", "Path to the output WAV file to write.")
	rateOverride := pflag.Float64("rate", 0, "Override the graph spec's sample rate.")
	blockOverride := pflag.Int("block", 0, "Override the graph spec's block size.")
	metricsAddr := pflag.String("metrics-addr", "", "Address to serve /metrics on, e.g. :9090. Empty disables it.")
	pflag.Parse()

	log := logging.New(os.Stderr, "graphhost", logging.LevelInfo)

	if *graphPath == "" || *inputPath == "" || *outputPath == "" {
		fmt.Fprintln(os.Stderr, "graphhost: --graph, --input, and --output are required")
		pflag.Usage()
		os.Exit(2)
	}

	spec, err := config.LoadGraphSpec(*graphPath)
	if err != nil {
		log.Error(err, "failed to load graph spec")
		os.Exit(1)
	}
	if *rateOverride > 0 {
		spec.SampleRate = *rateOverride
	}
	if *blockOverride > 0 {
		spec.BlockSize = *blockOverride
	}

	reg := prometheus.NewRegistry()
	metrics := engine.NewMetrics(reg)

	if *metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		go func() {
			log.Info("serving metrics on " + *metricsAddr)
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil {
				log.Error(err, "metrics server stopped")
			}
		}()
	}

	g, err := buildGraph(spec, metrics)
	if err != nil {
		log.Error(err, "failed to build graph")
		os.Exit(1)
	}
	defer g.Close()

	if err := g.Prepare(spec.SampleRate, spec.BlockSize); err != nil {
		log.Error(err, "failed to prepare graph")
		os.Exit(1)
	}

	if err := run(g, spec, *inputPath, *outputPath); err != nil {
		log.Error(err, "render run failed")
		os.Exit(1)
	}
}

// buildGraph instantiates a graph from spec using a small built-in
// node type registry; spec.Nodes naming anything else is an error.
func buildGraph(spec *config.GraphSpec, metrics *engine.Metrics) (*graph.Graph, error) {
	outerPorts := port.NewBuilder().
		WithAudioInputs(spec.AudioChannels, "in", "Host In").
		WithAudioOutputs(spec.AudioChannels, "out", "Host Out").
		MustBuild()

	g := graph.NewGraph(outerPorts, spec.BlockSize, metrics)

	for _, n := range spec.Nodes {
		node, err := newNode(n, spec.SampleRate)
		if err != nil {
			return nil, err
		}
		if _, err := g.AddNode(node, n.ID); err != nil {
			return nil, fmt.Errorf("add node %d: %w", n.ID, err)
		}
	}
	for _, c := range spec.Connections {
		if err := g.AddConnection(c.SrcNode, c.SrcPort, c.DstNode, c.DstPort); err != nil {
			return nil, fmt.Errorf("connect %d:%d -> %d:%d: %w", c.SrcNode, c.SrcPort, c.DstNode, c.DstPort, err)
		}
	}
	if spec.MidiChannelMask != nil {
		g.SetMidiChannelMask(*spec.MidiChannelMask)
	}
	if spec.VelocityCurve != nil {
		g.SetVelocityCurve(*spec.VelocityCurve)
	}
	return g, nil
}

func newNode(n config.NodeSpec, sampleRate float64) (graph.Node, error) {
	switch n.Type {
	case "gain":
		gn := nodes.NewGain(n.Channels)
		if n.GainDB != nil {
			gn.SetGain(float32(math.Pow(10, float64(*n.GainDB)/20)))
		} else {
			gn.SetGain(n.Gain)
		}
		return gn, nil
	case "passthrough":
		return nodes.NewPassthrough(n.Channels), nil
	case "delay":
		return nodes.NewDelay(n.Channels, sampleRate, n.Delay), nil
	case "pan":
		p := nodes.NewPan()
		p.SetPosition(n.Position)
		return p, nil
	case "crossfade":
		cf := nodes.NewCrossfade(n.Channels)
		cf.SetPosition(n.Position)
		return cf, nil
	case "clip":
		threshold := n.Threshold
		if threshold == 0 {
			threshold = 1
		}
		return nodes.NewClip(n.Channels, threshold), nil
	case "stereowidth":
		sw := nodes.NewStereoWidth()
		if n.Width != 0 {
			sw.SetWidth(n.Width)
		}
		sw.SetBalance(n.Balance)
		return sw, nil
	case "mixer":
		numInputs := n.NumInputs
		if numInputs == 0 {
			numInputs = 2
		}
		mx := nodes.NewMixer(n.Channels, numInputs)
		for i, g := range n.InputGains {
			if i >= numInputs {
				break
			}
			mx.SetInputGain(i, g)
		}
		return mx, nil
	default:
		return nil, fmt.Errorf("unknown node type %q", n.Type)
	}
}

// run streams inputPath through g block by block and writes the
// result to outputPath.
func run(g *graph.Graph, spec *config.GraphSpec, inputPath, outputPath string) error {
	in, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer in.Close()

	decoder := wav.NewDecoder(in)
	if !decoder.IsValidFile() {
		return fmt.Errorf("%s is not a valid WAV file", inputPath)
	}
	decoder.ReadInfo()
	numChannels := int(decoder.NumChans)
	bitDepth := int(decoder.BitDepth)

	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer out.Close()

	encoder := wav.NewEncoder(out, int(decoder.SampleRate), bitDepth, numChannels, 1)
	defer encoder.Close()

	blockSize := spec.BlockSize
	pcmBuf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: numChannels, SampleRate: int(decoder.SampleRate)},
		Data:           make([]int, blockSize*numChannels),
		SourceBitDepth: bitDepth,
	}

	inChannels := make([][]float32, spec.AudioChannels)
	outChannels := make([][]float32, spec.AudioChannels)
	for i := range inChannels {
		inChannels[i] = make([]float32, blockSize)
		outChannels[i] = make([]float32, blockSize)
	}
	pipe := midi.NewPipe()
	maxSample := float32(int(1) << uint(bitDepth-1))

	for {
		n, err := decoder.PCMBuffer(pcmBuf)
		if err != nil {
			return fmt.Errorf("decode block: %w", err)
		}
		if n == 0 {
			break
		}
		frames := n / numChannels

		for ch := range inChannels {
			for f := 0; f < frames; f++ {
				srcCh := ch % numChannels
				inChannels[ch][f] = float32(pcmBuf.Data[f*numChannels+srcCh]) / maxSample
			}
		}

		block := engine.NewAudioBlock(sliceFrames(inChannels, frames), sliceFrames(outChannels, frames), frames)
		g.Render(block, pipe)

		outBuf := &audio.IntBuffer{
			Format:         pcmBuf.Format,
			Data:           make([]int, frames*numChannels),
			SourceBitDepth: bitDepth,
		}
		for f := 0; f < frames; f++ {
			for ch := 0; ch < numChannels; ch++ {
				srcCh := ch
				if srcCh >= len(outChannels) {
					srcCh = len(outChannels) - 1
				}
				outBuf.Data[f*numChannels+ch] = int(outChannels[srcCh][f] * maxSample)
			}
		}
		if err := encoder.Write(outBuf); err != nil {
			return fmt.Errorf("encode block: %w", err)
		}

		if frames < blockSize {
			break
		}
	}
	return nil
}

func sliceFrames(channels [][]float32, frames int) [][]float32 {
	out := make([][]float32, len(channels))
	for i, ch := range channels {
		out[i] = ch[:frames]
	}
	return out
}
