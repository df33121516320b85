package session

// Image is the transient handle for the picked file. Only the Machine that
// created it holds a reference; the presentation sees ImageInfo copies.
type Image struct {
	info     ImageInfo
	data     []byte
	released bool
}

// ImageInfo is the read-only description used for previews.
type ImageInfo struct {
	Name        string
	ContentType string
	Size        int64
}

func newImage(up Upload) *Image {
	return &Image{info: ImageInfo{Name: up.Name, ContentType: up.ContentType, Size: up.Size}}
}

func (i *Image) attach(data []byte) {
	if i.released {
		return
	}
	i.data = data
	i.info.Size = int64(len(data))
}

// release drops the bytes so superseded uploads do not accumulate.
func (i *Image) release() {
	if i == nil || i.released {
		return
	}
	for idx := range i.data {
		i.data[idx] = 0
	}
	i.data = nil
	i.released = true
}
