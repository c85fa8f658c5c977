package modules

type Extractor[D any] interface {
	Extract(data []byte) (D, error)
}

type Transformer[D any, P any] interface {
	Transform(params P, decoded D) (D, error)
}

// Loader copies a transformed value into caller-owned output buffers laid out
// as its declared shape list.
type Loader[D any] interface {
	ShapeTypes() []ShapeType
	Load(buffers [][]byte, decoded D) error
}

var (
	_ Extractor[*LocalizationDecoded]                          = (*LocalizationExtractor)(nil)
	_ Transformer[*LocalizationDecoded, *ImageTransformParams] = (*LocalizationTransformer)(nil)
	_ Loader[*LocalizationDecoded]                             = (*LocalizationLoader)(nil)
)
