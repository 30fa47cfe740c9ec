package codec

// Containers are plain marker records. The codec keeps no depth count, so an
// unbalanced stream is only noticed when a later typed read mismatches.

// OpenContainer starts a nested scope under key
func (c *Codec) OpenContainer(key Key) error {
	return c.appendFixed(key, ContainerOpen{})
}

// CloseContainer ends the innermost open scope. Its key is written as 0.
func (c *Codec) CloseContainer() error {
	return c.appendFixed(0, ContainerClose{})
}

// EnterContainer consumes a container open record and returns its key
func (c *Codec) EnterContainer() (Key, error) {
	return c.Read(TagContainer, nil)
}

// ExitContainer consumes a container close record
func (c *Codec) ExitContainer() error {
	_, err := c.Read(TagContainerClose, nil)
	return err
}
