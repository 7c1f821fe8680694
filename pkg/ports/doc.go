/*
Package ports defines the driven ports (interfaces) of the quiz authoring engine.

These interfaces decouple the core from its collaborators, so an editor can run
against any storage backend and push changes to any renderer.

# Key Interfaces

  - QuizStore: the persistence collaborator. Loads and saves quiz records.
  - ChangeNotifier: the rendering collaborator. Receives change events and
    socket recompute signals.
  - DistributedLocker: coordinates access to one quiz across replicas.
*/
package ports
