// Package monostream streams video to a 1-bit monochrome OLED panel driven by
// a microcontroller on the other end of a serial link.
//
// Each source frame is letterboxed onto the panel, reduced to one bit per
// pixel by a dithering algorithm, packed into SSD1306-style vertical pages
// and sent as a single framed message. The receiver answers every frame with
// one acknowledgment byte before the next frame is sent.
//
// # Panel Characteristics
//
// - 128×64 pixels by default, any width and any height that is a multiple of 8
// - 1 bit per pixel, 1 is lit
// - Page-packed layout: byte (page·W + x), bit (y mod 8), LSB at the top
//
// # Wire Protocol
//
// Every frame is the header AA 55 AA 55 followed by W·H/8 payload bytes. The
// receiver replies with the single byte 0xAC once the frame is on screen.
// Any other reply, or none within the acknowledgment timeout, ends the
// session. There is no retry and no resynchronization.
//
//	host                         receiver
//	 |-- AA 55 AA 55 + 1024 B ---->|
//	 |<----------- AC -------------|
//	 |-- AA 55 AA 55 + 1024 B ---->|
//	 |<----------- AC -------------|
//
// # Hardware Connection
//
// Any board with a USB serial port and an SSD1306-class panel works. Opening
// the port resets most Arduino-class boards, so the session waits for the
// boot delay before the first frame. When the board's reset line is wired to
// a GPIO, it can be given in Opts.RST and is pulsed before that wait.
//
//	Board  → Host
//	USB    → USB (e.g. /dev/ttyUSB0, COM3)
//	RST    → Optional: GPIO for hardware reset
//
// # Basic Usage
//
//	src, _ := videocap.Open("clip.mp4")
//	defer src.Close()
//
//	stats, err := monostream.Run(src, func() (link.Conn, error) {
//		return link.Open("/dev/ttyUSB0", 115200*physic.Hertz, link.DefaultTimeout)
//	}, &monostream.Opts{
//		Variant:    dither.VariantAtkinson,
//		SkipFrames: true,
//	})
//
// opts can be nil to stream 128×64 with Floyd–Steinberg dithering and no
// frame skipping.
//
// # Pacing
//
// Frames are paced to the source frame rate (15 fps when the source does not
// report one). When a frame is acknowledged late and SkipFrames is set, the
// session drops as many whole frame intervals as it is behind, so playback
// keeps its place in time instead of drifting.
//
// # Dithering
//
// Five variants are available: threshold, bayer (4×4 ordered), floyd
// (Floyd–Steinberg), atkinson and line (alternating row thresholds). An
// unknown name falls back to threshold with a warning.
package monostream
