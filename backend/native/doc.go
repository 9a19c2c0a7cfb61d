// Package native implements gpucore.Device on top of gogpu/wgpu/hal.
//
// HALDevice maps gpucore texture IDs to hal textures and performs uploads
// through the hal queue. Any hal backend works, including hal/noop for
// headless rendering and tests:
//
//	dev := native.NewHALDevice(halDevice, halQueue)
//	defer dev.Close()
//
//	ft, err := fons.New(dev, fons.DefaultConfig())
package native
