package go_rpn_targets

import (
	"context"
	"sync"

	"github.com/okieraised/go-rpn-targets/config"
	"github.com/okieraised/go-rpn-targets/modules"
	"github.com/okieraised/go-rpn-targets/rcnn"
	"github.com/okieraised/go-rpn-targets/utils"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Sample is one raw training record. Image is optional; without it the output
// size is derived from the annotation's image size.
type Sample struct {
	Image      []byte
	Annotation []byte
	Flip       bool
}

// BatchResult holds one set of output buffers per sample. Buffers of dropped
// samples are nil.
type BatchResult struct {
	Buffers [][][]byte
	Dropped []int
}

type LocalizationPipeline struct {
	cfg         *config.LocalizationParams
	imageCfg    *config.ImageFullParams
	extractor   modules.Extractor[*modules.LocalizationDecoded]
	transformer modules.Transformer[*modules.LocalizationDecoded, *modules.ImageTransformParams]
	loader      *modules.LocalizationLoader
}

// NewLocalizationPipeline generates the anchor grid once and builds the
// extract, transform and load stages around it.
func NewLocalizationPipeline(cfg *config.LocalizationParams, imageCfg *config.ImageFullParams) (*LocalizationPipeline, error) {
	if cfg == nil || imageCfg == nil {
		return nil, errors.New("localization and image configuration are required")
	}

	anchors, err := rcnn.GenerateAnchors(cfg)
	if err != nil {
		return nil, err
	}
	transformer, err := modules.NewLocalizationTransformer(cfg, anchors)
	if err != nil {
		return nil, err
	}
	loader, err := modules.NewLocalizationLoader(cfg)
	if err != nil {
		return nil, err
	}

	grid := transformer.Anchors()
	utils.Logger().Info("localization pipeline ready",
		zap.Int("anchors", grid.Len()),
		zap.Int("anchors_per_cell", grid.AnchorsPerCell()),
		zap.Int("feature_size", cfg.FeatureSize()),
		zap.String("type_string", cfg.TypeString),
	)

	return &LocalizationPipeline{
		cfg:         cfg,
		imageCfg:    imageCfg,
		extractor:   modules.NewLocalizationExtractor(cfg),
		transformer: transformer,
		loader:      loader,
	}, nil
}

func (p *LocalizationPipeline) OutputShapes() []modules.ShapeType {
	return p.loader.ShapeTypes()
}

func (p *LocalizationPipeline) AllocateBuffers() [][]byte {
	return p.loader.AllocateBuffers()
}

// Process runs one annotation through all three stages into bufs.
func (p *LocalizationPipeline) Process(annotation []byte, params *modules.ImageTransformParams, bufs [][]byte) error {
	decoded, err := p.extractor.Extract(annotation)
	if err != nil {
		return err
	}
	return p.transformAndLoad(decoded, params, bufs)
}

func (p *LocalizationPipeline) transformAndLoad(decoded *modules.LocalizationDecoded, params *modules.ImageTransformParams, bufs [][]byte) error {
	decoded, err := p.transformer.Transform(params, decoded)
	if err != nil {
		return err
	}
	return p.loader.Load(bufs, decoded)
}

func (p *LocalizationPipeline) processSample(sample Sample, seed int64) ([][]byte, error) {
	decoded, err := p.extractor.Extract(sample.Annotation)
	if err != nil {
		return nil, err
	}

	var params *modules.ImageTransformParams
	if len(sample.Image) > 0 {
		params, err = modules.ImageTransformParamsFromImage(sample.Image, p.imageCfg, seed)
	} else {
		params, err = modules.NewImageTransformParams(decoded.Width, decoded.Height, p.imageCfg, seed)
	}
	if err != nil {
		return nil, err
	}
	params.Flip = sample.Flip

	bufs := p.loader.AllocateBuffers()
	if err = p.transformAndLoad(decoded, params, bufs); err != nil {
		return nil, err
	}
	return bufs, nil
}

func droppable(err error) bool {
	return errors.Is(err, modules.ErrDecode) || errors.Is(err, modules.ErrInvalidParams)
}

// ProcessBatch processes samples on a fixed pool of workers. Sample i draws
// its random state from baseSeed+i, so results do not depend on scheduling.
// Samples with malformed annotations or images are dropped; any other error
// aborts the batch.
func (p *LocalizationPipeline) ProcessBatch(ctx context.Context, samples []Sample, baseSeed int64, workers int) (*BatchResult, error) {
	if workers <= 0 {
		workers = 1
	}
	workers = min(workers, max(len(samples), 1))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	result := &BatchResult{Buffers: make([][][]byte, len(samples))}
	dropped := make([]bool, len(samples))

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		fatalErr error
	)
	jobs := make(chan int)

	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				bufs, err := p.processSample(samples[i], baseSeed+int64(i))
				switch {
				case err == nil:
					result.Buffers[i] = bufs
				case droppable(err):
					dropped[i] = true
					utils.Logger().Warn("dropping sample", zap.Int("sample", i), zap.Error(err))
				default:
					errOnce.Do(func() {
						fatalErr = errors.Wrapf(err, "sample %d", i)
						cancel()
					})
				}
			}
		}()
	}

	var stopErr error
dispatch:
	for i := range samples {
		if stopErr = ctx.Err(); stopErr != nil {
			break
		}
		select {
		case <-ctx.Done():
			stopErr = ctx.Err()
			break dispatch
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	if fatalErr != nil {
		return nil, fatalErr
	}
	if stopErr != nil {
		return nil, stopErr
	}

	for i, d := range dropped {
		if d {
			result.Dropped = append(result.Dropped, i)
		}
	}
	return result, nil
}
